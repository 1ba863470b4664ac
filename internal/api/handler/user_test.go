package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/qs3c/anim_go_server/internal/repository"
	"github.com/qs3c/anim_go_server/internal/service"
	"github.com/qs3c/anim_go_server/internal/testutil"
)

func setupUserHandler(t *testing.T) (*UserHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	creditService := service.NewCreditService(repository.NewUserRepository(db), testConfig())
	return NewUserHandler(creditService), db
}

func userRouter(h *UserHandler, userID int64) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(userID))
	router.GET("/user/credits", h.GetCredits)
	router.POST("/user/refresh-credits", h.RefreshCredits)
	router.POST("/user/reset-credits", h.ResetCredits)
	return router
}

func TestUserHandler_GetCredits(t *testing.T) {
	h, db := setupUserHandler(t)
	user := testutil.TestUser(t, db, testutil.WithCredits(7))
	router := userRouter(h, user.ID)

	w := performRequest(router, "GET", "/user/credits", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, float64(7), body["credits"])
}

func TestUserHandler_GetCredits_MonthlyRefresh(t *testing.T) {
	h, db := setupUserHandler(t)

	// 上次刷新在上个月，余额读取时补足到下限
	user := testutil.TestUser(t, db,
		testutil.WithCredits(1),
		testutil.WithLastRefresh(time.Now().AddDate(0, -1, 0)),
	)
	router := userRouter(h, user.ID)

	w := performRequest(router, "GET", "/user/credits", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, float64(10), body["credits"])
}

func TestUserHandler_RefreshCredits_Placeholder(t *testing.T) {
	h, db := setupUserHandler(t)
	user := testutil.TestUser(t, db, testutil.WithCredits(4))
	router := userRouter(h, user.ID)

	w := performRequest(router, "POST", "/user/refresh-credits", map[string]int{"credits": 100})

	// 占位接口不加积分，只引导走支付流程
	assert.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(4), body["credits"])
}

func TestUserHandler_ResetCredits(t *testing.T) {
	h, db := setupUserHandler(t)
	user := testutil.TestUser(t, db, testutil.WithCredits(0))
	router := userRouter(h, user.ID)

	w := performRequest(router, "POST", "/user/reset-credits", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	assert.Equal(t, float64(20), body["credits"])
}

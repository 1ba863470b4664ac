package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/repository"
	"github.com/qs3c/anim_go_server/internal/testutil"
)

func testCreditConfig() *config.Config {
	return &config.Config{
		Credits: config.CreditsConfig{
			Initial:      20,
			MonthlyFloor: 10,
		},
	}
}

func TestCreditService_ResolveUser_FirstContact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())

	user, err := svc.ResolveUser("auth0|first", "first@example.com", "First")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, 20, user.Credits)

	// 再次解析返回同一用户，不重复发放初始积分
	again, err := svc.ResolveUser("auth0|first", "first@example.com", "First")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, 20, again.Credits)
}

func TestCreditService_UseCredit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())
	user := testutil.TestUser(t, db, testutil.WithCredits(1))

	err := svc.UseCredit(user.ID)
	require.NoError(t, err)

	balance, err := svc.GetBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestCreditService_UseCredit_Insufficient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())
	user := testutil.TestUser(t, db, testutil.WithCredits(0))

	err := svc.UseCredit(user.ID)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestCreditService_RefundCredit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())
	user := testutil.TestUser(t, db, testutil.WithCredits(5))

	require.NoError(t, svc.UseCredit(user.ID))
	require.NoError(t, svc.RefundCredit(user.ID))

	balance, err := svc.GetBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestCreditService_GetBalance_MonthlyRefresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())

	// 上次刷新在上个月且余额低于下限，读取时补足到 10
	user := testutil.TestUser(t, db,
		testutil.WithCredits(2),
		testutil.WithLastRefresh(time.Now().AddDate(0, -1, 0)),
	)

	balance, err := svc.GetBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestCreditService_GetBalance_MonthlyRefresh_NoReduction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())

	// 余额高于下限时月度补足不得减少积分
	user := testutil.TestUser(t, db,
		testutil.WithCredits(50),
		testutil.WithLastRefresh(time.Now().AddDate(0, -2, 0)),
	)

	balance, err := svc.GetBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance)
}

func TestCreditService_GetBalance_SameMonthNoRefresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())

	// 当月已刷新过，余额低也不补足
	user := testutil.TestUser(t, db,
		testutil.WithCredits(3),
		testutil.WithLastRefresh(time.Now()),
	)

	balance, err := svc.GetBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, balance)
}

func TestCreditService_ResetCredits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())
	user := testutil.TestUser(t, db, testutil.WithCredits(0))

	credits, err := svc.ResetCredits(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, credits)

	balance, err := svc.GetBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestCreditService_RefreshAllMonthly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewCreditService(repository.NewUserRepository(db), testCreditConfig())

	stale := testutil.TestUser(t, db,
		testutil.WithCredits(1),
		testutil.WithLastRefresh(time.Now().AddDate(0, -1, 0)),
	)
	testutil.TestUser(t, db, testutil.WithCredits(5))

	affected, err := svc.RefreshAllMonthly()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	balance, err := svc.GetBalance(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/pkg/pubsub"
	"github.com/qs3c/anim_go_server/internal/repository"
	"github.com/qs3c/anim_go_server/internal/service"
	"github.com/qs3c/anim_go_server/internal/testutil"
)

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) UploadVideo(animationID int64, data []byte) (string, error) {
	return f.url, f.err
}

type fakePublisher struct {
	events chan *pubsub.ExportMessage
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(chan *pubsub.ExportMessage, 4)}
}

func (f *fakePublisher) PublishExport(ctx context.Context, msg *pubsub.ExportMessage) error {
	f.events <- msg
	return nil
}

func setupExportServer(t *testing.T, userID int64, uploader *fakeUploader, publisher *fakePublisher, animationService *service.AnimationService) *httptest.Server {
	t.Helper()

	cfg := &config.ExportConfig{
		MaxDurationMS: 30000,
		GraceSeconds:  5,
		MaxVideoBytes: 1 << 20,
	}
	h := NewExportHandler(animationService, uploader, publisher, cfg)

	router := gin.New()
	router.Use(mockAuth(userID))
	router.GET("/animations/:id/export", h.Handle)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialExport(t *testing.T, server *httptest.Server, animationID int64) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/animations/" + itoa(animationID) + "/export"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) exportReply {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply exportReply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func awaitEvent(t *testing.T, publisher *fakePublisher) *pubsub.ExportMessage {
	t.Helper()

	select {
	case msg := <-publisher.events:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for export event")
		return nil
	}
}

func TestExportHandler_VideoSaved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	creditService := service.NewCreditService(repository.NewUserRepository(db), testConfig())
	animationService := service.NewAnimationService(repository.NewAnimationRepository(db), creditService, &fakeGenerator{code: validSketch})

	user := testutil.TestUser(t, db)
	animation := testutil.TestAnimation(t, db, user.ID)

	uploader := &fakeUploader{url: "https://cdn.example.com/videos/1.webm"}
	publisher := newFakePublisher()
	server := setupExportServer(t, user.ID, uploader, publisher, animationService)

	conn := dialExport(t, server, animation.ID)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":     "startRecording",
		"duration": 1000,
	}))
	assert.Equal(t, "recordingStarted", readReply(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "videoReady",
		"data": base64.StdEncoding.EncodeToString([]byte("webm-bytes")),
	}))

	reply := readReply(t, conn)
	assert.Equal(t, "videoSaved", reply.Type)
	assert.Equal(t, uploader.url, reply.VideoURL)

	// 视频地址已回写到动画记录
	saved, err := animationService.Get(user.ID, animation.ID)
	require.NoError(t, err)
	assert.Equal(t, uploader.url, saved.VideoURL)

	event := awaitEvent(t, publisher)
	assert.Equal(t, pubsub.StatusSaved, event.Status)
	assert.Equal(t, animation.ID, event.AnimationID)
}

func TestExportHandler_RecordingError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	creditService := service.NewCreditService(repository.NewUserRepository(db), testConfig())
	animationService := service.NewAnimationService(repository.NewAnimationRepository(db), creditService, &fakeGenerator{code: validSketch})

	user := testutil.TestUser(t, db)
	animation := testutil.TestAnimation(t, db, user.ID)

	publisher := newFakePublisher()
	server := setupExportServer(t, user.ID, &fakeUploader{}, publisher, animationService)

	conn := dialExport(t, server, animation.ID)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":     "startRecording",
		"duration": 1000,
	}))
	assert.Equal(t, "recordingStarted", readReply(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":  "recordingError",
		"error": "canvas capture failed",
	}))

	// 终态失败以 recordingError 转发
	reply := readReply(t, conn)
	assert.Equal(t, "recordingError", reply.Type)
	assert.Equal(t, "canvas capture failed", reply.Error)

	event := awaitEvent(t, publisher)
	assert.Equal(t, pubsub.StatusFailed, event.Status)
	assert.Equal(t, "canvas capture failed", event.Error)
}

func TestExportHandler_UploadFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	creditService := service.NewCreditService(repository.NewUserRepository(db), testConfig())
	animationService := service.NewAnimationService(repository.NewAnimationRepository(db), creditService, &fakeGenerator{code: validSketch})

	user := testutil.TestUser(t, db)
	animation := testutil.TestAnimation(t, db, user.ID)

	uploader := &fakeUploader{err: errors.New("bucket unreachable")}
	publisher := newFakePublisher()
	server := setupExportServer(t, user.ID, uploader, publisher, animationService)

	conn := dialExport(t, server, animation.ID)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":     "startRecording",
		"duration": 1000,
	}))
	assert.Equal(t, "recordingStarted", readReply(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "videoReady",
		"data": base64.StdEncoding.EncodeToString([]byte("webm-bytes")),
	}))

	// 上传失败同样以 recordingError 收尾并广播失败事件
	reply := readReply(t, conn)
	assert.Equal(t, "recordingError", reply.Type)

	event := awaitEvent(t, publisher)
	assert.Equal(t, pubsub.StatusFailed, event.Status)
}

func TestExportHandler_NotOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	creditService := service.NewCreditService(repository.NewUserRepository(db), testConfig())
	animationService := service.NewAnimationService(repository.NewAnimationRepository(db), creditService, &fakeGenerator{code: validSketch})

	owner := testutil.TestUser(t, db)
	intruder := testutil.TestUser(t, db)
	animation := testutil.TestAnimation(t, db, owner.ID)

	server := setupExportServer(t, intruder.ID, &fakeUploader{}, newFakePublisher(), animationService)

	// 他人的动画在升级前被拒绝，握手失败
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/animations/" + itoa(animation.ID) + "/export"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

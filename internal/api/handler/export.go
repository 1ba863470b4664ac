package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/api/middleware"
	"github.com/qs3c/anim_go_server/internal/model/dto"
	"github.com/qs3c/anim_go_server/internal/pkg/pubsub"
	"github.com/qs3c/anim_go_server/internal/pkg/response"
	"github.com/qs3c/anim_go_server/internal/sandbox"
	"github.com/qs3c/anim_go_server/internal/service"
)

// VideoUploader 导出视频的对象存储上传
type VideoUploader interface {
	UploadVideo(animationID int64, data []byte) (string, error)
}

// ExportPublisher 跨实例广播导出事件
type ExportPublisher interface {
	PublishExport(ctx context.Context, msg *pubsub.ExportMessage) error
}

// exportRequest 录制连接上的客户端消息
type exportRequest struct {
	Type     string `json:"type"`
	Duration int    `json:"duration,omitempty"` // 毫秒
	Data     string `json:"data,omitempty"`     // base64 编码的视频
	Error    string `json:"error,omitempty"`
}

// exportReply 录制连接上的服务端消息
type exportReply struct {
	Type     string `json:"type"`
	VideoURL string `json:"videoUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ExportHandler struct {
	animationService *service.AnimationService
	uploader         VideoUploader
	publisher        ExportPublisher
	cfg              *config.ExportConfig
}

func NewExportHandler(
	animationService *service.AnimationService,
	uploader VideoUploader,
	publisher ExportPublisher,
	cfg *config.ExportConfig,
) *ExportHandler {
	return &ExportHandler{
		animationService: animationService,
		uploader:         uploader,
		publisher:        publisher,
		cfg:              cfg,
	}
}

// Handle 导出录制连接。客户端在沙盒里回放动画并上报录制结果，
// 服务端协调录制状态机、上传视频并回写动画记录。
// GET /api/animations/:id/export?token=xxx
func (h *ExportHandler) Handle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	animationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid animation ID")
		return
	}

	// 升级前校验归属，避免为他人的动画打开录制会话
	if _, err := h.animationService.Get(userID, animationID); err != nil {
		if errors.Is(err, service.ErrAnimationNotFound) {
			response.NotFoundError(c, "Animation not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade export connection: %v", err)
		return
	}

	relay := &exportRelay{
		handler:     h,
		conn:        conn,
		userID:      userID,
		animationID: animationID,
		session: sandbox.NewSession(
			time.Duration(h.cfg.MaxDurationMS)*time.Millisecond,
			time.Duration(h.cfg.GraceSeconds)*time.Second,
		),
	}
	go relay.run()
}

// exportRelay 单条导出连接的读循环与写锁
type exportRelay struct {
	handler     *ExportHandler
	conn        *websocket.Conn
	userID      int64
	animationID int64
	session     *sandbox.Session
	writeMu     sync.Mutex
}

func (r *exportRelay) run() {
	defer r.conn.Close()
	defer r.session.Close()

	for {
		var req exportRequest
		if err := r.conn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Type {
		case "startRecording":
			r.startRecording(req.Duration)
		case "videoReady":
			r.videoReady(req.Data)
		case "recordingError":
			if err := r.session.RecordingError(req.Error); err != nil {
				r.reply(&exportReply{Type: "error", Error: err.Error()})
			}
		default:
			r.reply(&exportReply{Type: "error", Error: "unknown message type"})
		}
	}
}

func (r *exportRelay) startRecording(durationMS int) {
	done, err := r.session.Start(time.Duration(durationMS) * time.Millisecond)
	if err != nil {
		r.reply(&exportReply{Type: "error", Error: err.Error()})
		return
	}

	go r.awaitResult(done)
	r.reply(&exportReply{Type: "recordingStarted"})
}

func (r *exportRelay) videoReady(encoded string) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		r.session.RecordingError("invalid video payload")
		return
	}
	if int64(len(data)) > r.handler.cfg.MaxVideoBytes {
		r.session.RecordingError("video exceeds size limit")
		return
	}

	if err := r.session.VideoReady(data); err != nil {
		r.reply(&exportReply{Type: "error", Error: err.Error()})
	}
}

// awaitResult 等待录制终态：成功则上传视频并回写动画记录，
// 失败（含兜底超时）则把原因转发给客户端。连接断开关闭会话时
// 通道被关掉，这里直接退出。
func (r *exportRelay) awaitResult(done <-chan sandbox.Result) {
	result, ok := <-done
	if !ok {
		return
	}

	if result.Err != "" {
		r.fail(result.Err)
		return
	}

	videoURL, err := r.handler.uploader.UploadVideo(r.animationID, result.Video)
	if err != nil {
		log.Printf("Failed to upload export video for animation %d: %v", r.animationID, err)
		r.fail("failed to store video")
		return
	}

	saveReq := &dto.SaveVideoRequest{VideoURL: videoURL}
	if err := r.handler.animationService.SaveVideo(r.userID, r.animationID, saveReq); err != nil {
		log.Printf("Failed to save video URL for animation %d: %v", r.animationID, err)
		r.fail("failed to save video")
		return
	}

	r.reply(&exportReply{Type: "videoSaved", VideoURL: videoURL})
	r.publish(&pubsub.ExportMessage{
		UserID:      r.userID,
		AnimationID: r.animationID,
		Status:      pubsub.StatusSaved,
		VideoURL:    videoURL,
	})
}

// fail 向客户端转发终态失败并广播失败事件
func (r *exportRelay) fail(reason string) {
	r.reply(&exportReply{Type: "recordingError", Error: reason})
	r.publish(&pubsub.ExportMessage{
		UserID:      r.userID,
		AnimationID: r.animationID,
		Status:      pubsub.StatusFailed,
		Error:       reason,
	})
}

func (r *exportRelay) reply(msg *exportReply) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := r.conn.WriteJSON(msg); err != nil {
		log.Printf("Failed to write export reply: %v", err)
	}
}

func (r *exportRelay) publish(msg *pubsub.ExportMessage) {
	if r.handler.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.handler.publisher.PublishExport(ctx, msg); err != nil {
		log.Printf("Failed to publish export event: %v", err)
	}
}

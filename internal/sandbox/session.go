package sandbox

import (
	"errors"
	"sync"
	"time"
)

// 录制会话状态机：Idle → Recording → Ready / Failed。
// Ready/Failed 之后允许重新开始录制，但同一时刻只允许一个未完成的录制。
type State int

const (
	StateIdle State = iota
	StateRecording
	StateReady
	StateFailed
)

var (
	ErrRecordingInProgress = errors.New("a recording is already in progress")
	ErrNotRecording        = errors.New("no recording in progress")
	ErrSessionClosed       = errors.New("session closed")
	ErrDurationTooLong     = errors.New("requested duration exceeds the allowed maximum")
)

// Result 录制终态，每次录制恰好投递一次
type Result struct {
	Video []byte
	Err   string // 非空表示录制失败
}

// Session 单个预览会话的录制协调器。
// 定时器只在录制期间存在，完成或关闭时同步取消。
type Session struct {
	mu          sync.Mutex
	state       State
	closed      bool
	timer       *time.Timer
	done        chan Result
	maxDuration time.Duration
	grace       time.Duration
}

func NewSession(maxDuration, grace time.Duration) *Session {
	return &Session{
		state:       StateIdle,
		maxDuration: maxDuration,
		grace:       grace,
	}
}

// Start 开始一次录制，返回只投递一次的完成通道。
// 帧侧有自己的时长定时器；这里的定时器是 duration+grace 的兜底超时。
func (s *Session) Start(duration time.Duration) (<-chan Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.state == StateRecording {
		return nil, ErrRecordingInProgress
	}
	if duration <= 0 || duration > s.maxDuration {
		return nil, ErrDurationTooLong
	}

	s.state = StateRecording
	s.done = make(chan Result, 1)
	s.timer = time.AfterFunc(duration+s.grace, s.timeout)

	return s.done, nil
}

// VideoReady 录制完成，投递视频数据
func (s *Session) VideoReady(video []byte) error {
	return s.finish(StateReady, Result{Video: video})
}

// RecordingError 录制失败，投递失败原因
func (s *Session) RecordingError(reason string) error {
	return s.finish(StateFailed, Result{Err: reason})
}

// State 当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close 关闭会话并取消未触发的定时器，之后不再接受任何录制。
// 录制进行中关闭时直接关掉完成通道，让等待结果的一方立刻返回。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.stopTimerLocked()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.state = StateIdle
}

func (s *Session) finish(state State, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateRecording {
		return ErrNotRecording
	}

	s.stopTimerLocked()
	s.state = state
	s.done <- result
	s.done = nil

	return nil
}

// timeout 兜底超时，等价于一次 recordingError
func (s *Session) timeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateRecording {
		return
	}

	s.timer = nil
	s.state = StateFailed
	s.done <- Result{Err: "recording timed out"}
	s.done = nil
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

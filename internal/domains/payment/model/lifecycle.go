package model

import (
	"context"

	"github.com/looplab/fsm"
)

// Lifecycle events
const (
	EventApprove = "approve"
	EventCapture = "capture"
	EventFail    = "fail"
	EventCancel  = "cancel"
	// EventClaim: admin gán order Ko-fi unmatched cho một profile
	EventClaim = "claim"
)

func newLifecycle(current Status) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: EventApprove, Src: []string{string(StatusCreated)}, Dst: string(StatusApproved)},
			{Name: EventCapture, Src: []string{string(StatusCreated), string(StatusApproved)}, Dst: string(StatusCaptured)},
			{Name: EventFail, Src: []string{string(StatusCreated), string(StatusApproved)}, Dst: string(StatusFailed)},
			{Name: EventCancel, Src: []string{string(StatusCreated), string(StatusApproved)}, Dst: string(StatusCancelled)},
			{Name: EventClaim, Src: []string{string(StatusUnmatched)}, Dst: string(StatusCaptured)},
		},
		fsm.Callbacks{},
	)
}

// NextStatus trả về trạng thái sau khi áp dụng event.
// Capture một order đã captured trả ErrAlreadyCaptured để handler map sang 409.
func NextStatus(ctx context.Context, current Status, event string) (Status, error) {
	sm := newLifecycle(current)
	if !sm.Can(event) {
		if current == StatusCaptured && (event == EventCapture || event == EventClaim) {
			return current, ErrAlreadyCaptured
		}
		return current, ErrInvalidTransition
	}
	if err := sm.Event(ctx, event); err != nil {
		return current, err
	}
	return Status(sm.Current()), nil
}

// AvailableEvents dùng cho admin UI
func AvailableEvents(current Status) []string {
	return newLifecycle(current).AvailableTransitions()
}

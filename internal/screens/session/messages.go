package session

import (
	"github.com/abhisek/quizplay/internal/preflight"
)

// changedMsg asks the screen to re-read the session snapshot.
type changedMsg struct{}

// startedMsg is sent when the bootstrap command returns.
type startedMsg struct {
	Err error
}

// navDoneMsg is sent when a navigation request settles.
type navDoneMsg struct {
	Err error
}

// answerSetMsg is sent after an edit has been buffered.
type answerSetMsg struct {
	Err error
}

// leaveDoneMsg is sent when a leave or finish request returns without
// exiting the screen.
type leaveDoneMsg struct {
	Err error
}

// errorMsg shows a banner until the next successful operation.
type errorMsg struct {
	Text string
}

// progressMsg shows a blocking indicator until the matching progressDoneMsg.
type progressMsg struct {
	ID   int
	Text string
}

type progressDoneMsg struct {
	ID int
}

// confirmMsg opens a yes/no dialog. The answer is written to Reply.
type confirmMsg struct {
	Text  string
	Reply chan<- bool
}

// passwordReply answers a passwordMsg.
type passwordReply struct {
	Value     string
	Cancelled bool
}

// passwordMsg opens the quiz password prompt.
type passwordMsg struct {
	Request preflight.Request
	Reply   chan<- passwordReply
}

// scrollMsg moves the viewport. A zero Slot scrolls to the top.
type scrollMsg struct {
	Slot int
}

package diagnostics

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(log.New(&buf, "", 0), nil)
	r.CaptureMessage("unknown_author", "post p1 has no author", map[string]any{"postId": "p1", "authorId": "ghost"})

	want := "[diagnostics] unknown_author: post p1 has no author authorId=ghost postId=p1\n"
	if buf.String() != want {
		t.Errorf("logged %q, want %q", buf.String(), want)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.CaptureMessage("missing_comment", "c9", nil)

	msgs := r.Messages()
	if len(msgs) != 1 || msgs[0].Kind != "missing_comment" {
		t.Fatalf("Messages() = %+v", msgs)
	}
	msgs[0].Kind = "tampered"
	if r.Messages()[0].Kind != "missing_comment" {
		t.Error("Messages() exposes internal state")
	}
	Discard.CaptureMessage("x", strings.Repeat("y", 3), nil)
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/at-ishikawa/refresher/internal/assistant"
	"github.com/at-ishikawa/refresher/internal/catalog"
)

// Responder answers chat messages. *assistant.Assistant satisfies it.
type Responder interface {
	Respond(ctx context.Context, message string) assistant.Reply
}

// ChatCLI is a line based conversation with the assistant.
// When a reply carries a question, the next A-D answer is graded locally.
type ChatCLI struct {
	*InteractiveCLI
	responder Responder
	pending   *catalog.Question
}

func NewChatCLI(base *InteractiveCLI, responder Responder) *ChatCLI {
	return &ChatCLI{
		InteractiveCLI: base,
		responder:      responder,
	}
}

func (r *ChatCLI) Greet() {
	_, _ = r.bold.Fprintln(r.stdoutWriter, "Learning assistant")
	_, _ = r.faint.Fprintln(r.stdoutWriter, `Ask for a quiz question, a study plan, or anything else. Type "exit" to leave.`)
}

func (r *ChatCLI) Session(ctx context.Context) error {
	fmt.Fprint(r.stdoutWriter, "you> ")
	input, err := r.readLine()
	if err != nil {
		return err
	}
	switch strings.ToLower(input) {
	case "":
		return nil
	case "exit", "quit":
		return errEnd
	}

	if r.pending != nil {
		if option, ok := parseOption(input, len(r.pending.Options)); ok {
			r.grade(*r.pending, option)
			r.pending = nil
			return nil
		}
	}

	r.Say(ctx, input)
	return nil
}

// Say sends one message and prints the reply.
func (r *ChatCLI) Say(ctx context.Context, message string) {
	reply := r.responder.Respond(ctx, message)
	_, _ = r.bold.Fprint(r.stdoutWriter, "assistant> ")
	fmt.Fprintln(r.stdoutWriter, reply.Text)
	if reply.Fallback {
		_, _ = r.faint.Fprintln(r.stdoutWriter, "(offline response)")
	}
	r.pending = reply.Question
	fmt.Fprintln(r.stdoutWriter)
}

func (r *ChatCLI) grade(q catalog.Question, option int) {
	if option == q.Correct {
		_, _ = r.green.Fprintln(r.stdoutWriter, "Correct!")
	} else {
		_, _ = r.red.Fprintf(r.stdoutWriter, "Not quite. The answer is %s) %s\n", optionLetter(q.Correct), q.CorrectOption())
	}
	if q.Explanation != "" {
		_, _ = r.italic.Fprintln(r.stdoutWriter, q.Explanation)
	}
	fmt.Fprintln(r.stdoutWriter)
}

package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/chat"
)

// listChatMessages returns the session's transcript in order.
func (h *Handler) listChatMessages(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	messages := s.Chat.Messages()
	awaiting := s.Chat.Awaiting()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("messages", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, m := range messages {
						encodeChatMessage(e, m)
					}
				})
			})
			e.Field("awaiting", func(e *jx.Encoder) { e.Bool(awaiting) })
		})
	})
}

// sendChatMessage appends a user message and blocks until the assistant
// replies. The body is {"text": "..."}. A send while a reply is in
// flight is rejected without touching the transcript.
func (h *Handler) sendChatMessage(w http.ResponseWriter, r *http.Request) {
	d, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	var text string
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "text" {
			return d.Skip()
		}
		var err error
		text, err = d.Str()
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s := h.resolveSession(w, r)
	reply, err := s.Chat.Send(s.Context(), text)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "message is empty")
		case errors.Is(err, chat.ErrBusy):
			writeError(w, http.StatusConflict, "a reply is already in flight")
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeChatMessage(e, reply)
	})
}

func encodeChatMessage(e *jx.Encoder, m chat.Message) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(m.ID) })
		e.Field("role", func(e *jx.Encoder) { e.Str(string(m.Role)) })
		e.Field("text", func(e *jx.Encoder) { e.Str(m.Text) })
		e.Field("failed", func(e *jx.Encoder) { e.Bool(m.Failed) })
	})
}

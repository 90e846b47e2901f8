package editor

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	share := Modal{Kind: ModalShareNote, Payload: "n1"}

	tests := []struct {
		name  string
		state Modal
		ev    ModalEvent
		want  Modal
	}{
		{"open from none", Modal{}, OpenModal(ModalShareNote, "n1"), share},
		{"open replaces", share, OpenModal(ModalDeleteNote, "n2"), Modal{Kind: ModalDeleteNote, Payload: "n2"}},
		{"open none is ignored", share, OpenModal(ModalNone, "x"), share},
		{"close matching", share, CloseModal(ModalShareNote), Modal{}},
		{"close any", share, CloseModal(ModalNone), Modal{}},
		{"close other kind is ignored", share, CloseModal(ModalSettings), share},
		{"unknown event", share, ModalEvent{Type: ModalEventType(42)}, share},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.state, tt.ev))
		})
	}
	assert.False(t, Modal{}.IsOpen())
	assert.True(t, share.IsOpen())
}

func TestProperty_OpenThenCloseIsEmpty(t *testing.T) {
	kinds := []interface{}{
		ModalCreateNote, ModalDeleteNote, ModalSearchNote,
		ModalShareNote, ModalUploadImage, ModalSettings, ModalConfirmExit,
	}
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("opening then closing the same kind leaves nothing open", prop.ForAll(
		func(prev, kind ModalKind, payload string) bool {
			s := Reduce(Modal{Kind: prev}, OpenModal(kind, payload))
			if s.Kind != kind || s.Payload != payload {
				return false
			}
			return !Reduce(s, CloseModal(kind)).IsOpen()
		},
		gen.OneConstOf(kinds...),
		gen.OneConstOf(kinds...),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

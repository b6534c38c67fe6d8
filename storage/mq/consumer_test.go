package mq

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "AddressBook/pkg/errors"
)

func TestDecide(t *testing.T) {
	boom := errors.New("boom")
	skip := &pkgerrors.SkipMessageError{Reason: "already processed"}

	tests := []struct {
		name        string
		err         error
		redelivered bool
		want        Decision
	}{
		{"success", nil, false, Ack},
		{"skip", skip, false, Ack},
		{"wrapped skip on redelivery", fmt.Errorf("handler: %w", skip), true, Ack},
		{"first failure", boom, false, Requeue},
		{"repeated failure", boom, true, Drop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.err, tt.redelivered))
		})
	}
}

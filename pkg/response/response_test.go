package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "AddressBook/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{pkgerrors.InvalidPhone, http.StatusBadRequest},
		{pkgerrors.With(pkgerrors.InvalidName, "%q", "x"), http.StatusBadRequest},
		{pkgerrors.ContactNotFound, http.StatusNotFound},
		{pkgerrors.DuplicateName, http.StatusConflict},
		{pkgerrors.DuplicatePhone, http.StatusConflict},
		{pkgerrors.NothingToUndo, http.StatusConflict},
		{pkgerrors.NothingToRedo, http.StatusConflict},
		{pkgerrors.TooManyRequests, http.StatusTooManyRequests},
		{pkgerrors.Storage("write", "x.json", errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestDetailOf_HidesUnknownErrors(t *testing.T) {
	d := detailOf(errors.New("secret path /etc"))
	assert.Equal(t, "INTERNAL_ERROR", d.Code)
	assert.NotContains(t, d.Message, "/etc")

	d = detailOf(pkgerrors.With(pkgerrors.ContactNotFound, "%s", "Bob"))
	assert.Equal(t, "CONTACT_NOT_FOUND", d.Code)
	assert.Equal(t, "Contact not found: Bob", d.Message)
}

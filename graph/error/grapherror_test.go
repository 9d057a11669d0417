package grapherror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/actorgraph/errors"
)

func TestGraphError_ToUIMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *GraphError
		want string
	}{
		{
			name: "custom user message wins",
			err:  &GraphError{Category: CategoryLookup, UserMessage: "Actor not found"},
			want: "Actor not found",
		},
		{
			name: "default message for protocol",
			err:  &GraphError{Category: CategoryProtocol},
			want: "The request could not be understood",
		},
		{
			name: "default message for rate limit",
			err:  &GraphError{Category: CategoryRateLimit},
			want: "Too many requests - slow down",
		},
		{
			name: "unknown category",
			err:  &GraphError{Category: Category("mystery")},
			want: "An error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.ToUIMessage())
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		category    Category
		subcategory string
	}{
		{"not found", errors.NewNotFoundError("actor %s", "x"), CategoryLookup, SubcategoryLookupNotFound},
		{"invalid", errors.NewInvalidRequestError("bad id"), CategoryProtocol, SubcategoryProtocolInvalidValue},
		{"unavailable", errors.WrapServiceUnavailable(errors.New("refused"), "fetch"), CategoryLookup, SubcategoryLookupUnavailable},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "fetch"), CategoryLookup, SubcategoryLookupTimeout},
		{"other", errors.New("boom"), CategoryInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ge := Classify(tt.err, "")
			require.NotNil(t, ge)
			assert.Equal(t, tt.category, ge.Category)
			assert.Equal(t, tt.subcategory, ge.Subcategory)
			assert.ErrorIs(t, ge, tt.err)
		})
	}
}

func TestClassifyKeepsGraphErrors(t *testing.T) {
	original := New(CategoryRateLimit, errors.New("slow down"), "")
	wrapped := errors.Wrap(original, "handle message")

	assert.Same(t, original, Classify(wrapped, "other"))
	assert.Nil(t, Classify(nil, "x"))
}

func TestToLogFields(t *testing.T) {
	ge := Newf(CategoryProtocol, "bad message", "unknown type %q", "fly").
		WithSubcategory(SubcategoryProtocolUnknownType).
		WithContext("client_id", "c1")

	fields := ge.ToLogFields()
	assert.Contains(t, fields, "error_subcategory")
	assert.Contains(t, fields, SubcategoryProtocolUnknownType)
	assert.Contains(t, fields, "client_id")
	assert.True(t, ge.IsCategory(CategoryProtocol))
	assert.True(t, ge.IsSubcategory(SubcategoryProtocolUnknownType))
	assert.Contains(t, ge.Error(), `unknown type "fly"`)
}

package context

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
)

func TestCurrent_TravelsWithContext(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	current.Set(RequestIDKey, "abc")

	ctx := WithCurrent(context.Background(), current)

	got, ok := FromContext(ctx)
	Expect(ok).To(BeTrue())

	id, ok := got.GetString(RequestIDKey)
	Expect(ok).To(BeTrue())
	Expect(id).To(Equal("abc"))
}

func TestCurrent_IsolatedPerRequest(t *testing.T) {
	RegisterTestingT(t)

	first := WithCurrent(context.Background(), NewCurrent())
	second := WithCurrent(context.Background(), NewCurrent())

	GetCurrent(first).Set(RequestIDKey, "first")

	Expect(GetCurrent(second).Exists(RequestIDKey)).To(BeFalse())
	Expect(GetCurrent(context.Background()).All()).To(BeEmpty())
}

func TestCurrent_GetStringWrongType(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	current.Set(RequestIDKey, 42)

	_, ok := current.GetString(RequestIDKey)
	Expect(ok).To(BeFalse())

	_, ok = current.GetString(PathKey)
	Expect(ok).To(BeFalse())
}

package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	to  string
	got []Inquiry
	err error
}

func (r *recordingNotifier) Deliver(ctx context.Context, to string, inq Inquiry) error {
	r.to = to
	r.got = append(r.got, inq)
	return r.err
}

func TestSubmitAccepted(t *testing.T) {
	n := &recordingNotifier{}
	svc := NewService(n)

	reply, err := svc.Submit(context.Background(), Inquiry{
		Name:    " Ana ",
		Email:   "ana@example.com",
		Message: "Please call me <script>alert(1)</script>about a quote.",
	})
	require.NoError(t, err)
	assert.Equal(t, Reply{Success: true, Message: "Thank you for your inquiry! We will get back to you shortly."}, reply)
	require.Len(t, n.got, 1)
	assert.Equal(t, "info@foci.group", n.to)
	assert.Equal(t, "Ana", n.got[0].Name)
	assert.NotContains(t, n.got[0].Message, "<script>")
	assert.Contains(t, n.got[0].Message, "about a quote.")
}

func TestSubmitRejectsInvalidFields(t *testing.T) {
	cases := map[string]Inquiry{
		"short name":    {Name: "A", Email: "a@example.com", Message: "long enough message"},
		"bad email":     {Name: "Ana", Email: "not-an-email", Message: "long enough message"},
		"short message": {Name: "Ana", Email: "a@example.com", Message: "too short"},
		"blank name":    {Name: "   ", Email: "a@example.com", Message: "long enough message"},
	}
	for name, inq := range cases {
		t.Run(name, func(t *testing.T) {
			n := &recordingNotifier{}
			reply, err := NewService(n).Submit(context.Background(), inq)
			require.ErrorIs(t, err, ErrInvalidForm)
			assert.False(t, reply.Success)
			assert.Equal(t, "Invalid form data. Please check your entries.", reply.Message)
			assert.Empty(t, n.got)
		})
	}
}

func TestSubmitDeliveryFailure(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	_, err := NewService(n).Submit(context.Background(), Inquiry{Name: "Ana", Email: "a@example.com", Message: "long enough message"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidForm)
}

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "offers@example.com"}, nil)
	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "offers@example.com"}, nil)
	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != DefaultFromName {
		t.Errorf("expected default from name %q, got %q", DefaultFromName, sender.fromName)
	}
}

type fakeSendGrid struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestSendGridSender_Send(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := newSendGridSender(client, SendGridConfig{FromEmail: "offers@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "manager@example.com", Subject: "Callback", Body: "a < b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(client.sent))
	}
	msg := client.sent[0]
	if msg.Subject != "Callback" || msg.From.Address != "offers@example.com" {
		t.Errorf("unexpected message %+v", msg)
	}
	if len(msg.Content) != 2 || msg.Content[1].Value != "<pre>a &lt; b</pre>" {
		t.Errorf("unexpected content %+v", msg.Content)
	}
}

func TestSendGridSender_SendErrorStatus(t *testing.T) {
	sender := newSendGridSender(&fakeSendGrid{status: 401}, SendGridConfig{}, nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "manager@example.com"}); err == nil {
		t.Error("expected error on 401")
	}

	sender = newSendGridSender(&fakeSendGrid{err: errors.New("dial tcp")}, SendGridConfig{}, nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "manager@example.com"}); err == nil {
		t.Error("expected transport error")
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	if err := sender.Send(context.Background(), EmailMessage{To: "manager@example.com"}); err == nil {
		t.Error("expected error when client is nil")
	}
}

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	sender := newSESSender(client, SESConfig{FromEmail: "offers@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "manager@example.com", Subject: "Callback", Body: "call them"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := client.inputs[0]
	if got := aws.ToString(in.FromEmailAddress); got != "Cash Car B C <offers@example.com>" {
		t.Errorf("unexpected from %q", got)
	}
	if in.Destination.ToAddresses[0] != "manager@example.com" {
		t.Errorf("unexpected to %v", in.Destination.ToAddresses)
	}
	if aws.ToString(in.Content.Simple.Body.Text.Data) != "call them" {
		t.Error("expected text body")
	}
	if in.Content.Simple.Body.Html != nil {
		t.Error("expected no html body")
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := newSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{}, nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "manager@example.com"}); err == nil {
		t.Error("expected error")
	}
}

func TestNewSESSender_NilClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Error("expected nil sender without client")
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "manager@example.com", Subject: "Test"}); err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

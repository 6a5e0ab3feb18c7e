package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/models"
)

type fakeMailer struct{ sent []string }

func (f *fakeMailer) SendWelcomeEmail(email, _ string) error {
	f.sent = append(f.sent, email)
	return errors.New("smtp down")
}

type fakeAvatars struct {
	saved   []string
	removed []string
}

func (f *fakeAvatars) Save(r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	url := "/uploads/avatars/" + string(rune('a'+len(f.saved))) + ".png"
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeAvatars) Remove(url string) error {
	f.removed = append(f.removed, url)
	return nil
}

func newUserFixture() (UserService, *fakeMailer, *fakeAvatars) {
	store := newMemStore()
	mailer := &fakeMailer{}
	avatars := &fakeAvatars{}
	auth := NewAuthService("test-secret", time.Hour, bcrypt.MinCost)
	return NewUserService(memUsers{store}, auth, mailer, avatars, testLogger), mailer, avatars
}

func TestSignupAndLogin(t *testing.T) {
	svc, mailer, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.Signup(ctx, models.SignupInput{Name: "Ann", Email: "  Ann@Example.COM ", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "ann@example.com" || u.Role != models.RoleUser || u.PasswordHash == "secret1" {
		t.Fatalf("user = %+v", u)
	}
	// a failing mailer does not fail signup
	if len(mailer.sent) != 1 {
		t.Fatalf("welcome mails = %v", mailer.sent)
	}

	_, err = svc.Signup(ctx, models.SignupInput{Name: "Ann2", Email: "ANN@example.com", Password: "secret2"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate signup: %v", err)
	}

	tok, err := svc.Login(ctx, models.LoginRequest{Email: "ann@EXAMPLE.com", Password: "secret1"})
	if err != nil || tok == "" {
		t.Fatalf("login: %q, %v", tok, err)
	}
	for _, req := range []models.LoginRequest{
		{Email: "ann@example.com", Password: "wrong!"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		if _, err := svc.Login(ctx, req); !errors.Is(err, models.ErrUnauthorized) {
			t.Fatalf("login %s: %v", req.Email, err)
		}
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newUserFixture()
	_, err := svc.Signup(context.Background(), models.SignupInput{Name: "A", Email: "not-an-email", Password: "secret1"})
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Fatalf("err = %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()
	u, _ := svc.Signup(ctx, models.SignupInput{Name: "A", Email: "a@example.com", Password: "secret1"})

	err := svc.ChangePassword(ctx, u.ID, models.ChangePasswordInput{CurrentPassword: "nope", NewPassword: "secret2"})
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Field != "current_password" {
		t.Fatalf("wrong current: %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, models.ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "secret2"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "secret2"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, models.LoginRequest{Email: "a@example.com", Password: "secret1"}); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("old password still works: %v", err)
	}
}

func TestUpdateProfileTelegram(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()
	u, _ := svc.Signup(ctx, models.SignupInput{Name: "A", Email: "a@example.com", Password: "secret1"})

	chat := int64(42)
	got, err := svc.UpdateProfile(ctx, u.ID, models.UpdateProfileInput{TelegramChatID: &chat})
	if err != nil || got.TelegramChatID == nil || *got.TelegramChatID != 42 {
		t.Fatalf("set chat: %+v, %v", got, err)
	}
	zero := int64(0)
	got, err = svc.UpdateProfile(ctx, u.ID, models.UpdateProfileInput{TelegramChatID: &zero})
	if err != nil || got.TelegramChatID != nil {
		t.Fatalf("clear chat: %+v, %v", got, err)
	}
	if _, err := svc.UpdateProfile(ctx, u.ID, models.UpdateProfileInput{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("empty update: %v", err)
	}
}

func TestUploadAvatarReplacesOld(t *testing.T) {
	svc, _, avatars := newUserFixture()
	ctx := context.Background()
	u, _ := svc.Signup(ctx, models.SignupInput{Name: "A", Email: "a@example.com", Password: "secret1"})

	first, err := svc.UploadAvatar(ctx, u.ID, bytes.NewReader([]byte("img1")))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.UploadAvatar(ctx, u.ID, bytes.NewReader([]byte("img2")))
	if err != nil {
		t.Fatal(err)
	}
	if *second.AvatarURL == *first.AvatarURL {
		t.Fatal("avatar url not replaced")
	}
	if len(avatars.removed) != 1 || avatars.removed[0] != *first.AvatarURL {
		t.Fatalf("removed = %v", avatars.removed)
	}
}

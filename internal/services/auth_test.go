package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/notebook-buddy/backend/internal/data/repos/testutil"
	"github.com/notebook-buddy/backend/internal/data/repos/user"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/ctxutil"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := user.NewUserRepo(tx, testutil.Logger(t))
	svc, err := NewAuthService(testutil.Logger(t), repo, AuthConfig{
		JWTSecret: "test-secret",
		AccessTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserParams{
		Email:    "Alice@Example.com",
		Password: "s3cret",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", created.Email)
	}
	if created.PasswordHash == "" || created.PasswordHash == "s3cret" {
		t.Fatalf("password stored raw or missing")
	}

	got, err := svc.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("roundtrip failed: %+v", got)
	}

	// Wrong password and unknown user are indistinguishable (nil, nil).
	got, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	if err != nil || got != nil {
		t.Fatalf("wrong password: got %+v, err %v", got, err)
	}
	got, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret")
	if err != nil || got != nil {
		t.Fatalf("unknown user: got %+v, err %v", got, err)
	}
}

func TestCreateUserRejectsMissingCredential(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.CreateUser(context.Background(), CreateUserParams{Email: "nocreds@example.com"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apiErr := apierr.From(err); apiErr.Status != 400 {
		t.Fatalf("status = %d, want 400", apiErr.Status)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserParams{Email: "dup@example.com", Password: "pw"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := svc.CreateUser(ctx, CreateUserParams{Email: "dup@example.com", Password: "pw2"})
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	apiErr := apierr.From(err)
	if apiErr.Status != 400 || apiErr.Code != "conflict_error" {
		t.Fatalf("got %d/%s", apiErr.Status, apiErr.Code)
	}
}

func TestConflictMessageCarriesVerbatimEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	// A percent in the address must survive error formatting untouched.
	email := "dup%40alias@example.com"
	if _, err := svc.CreateUser(ctx, CreateUserParams{Email: email, Password: "pw"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := svc.CreateUser(ctx, CreateUserParams{Email: email, Password: "pw2"})
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	msg := err.Error()
	if !strings.Contains(msg, email) || strings.Contains(msg, "MISSING") {
		t.Fatalf("malformed conflict message: %q", msg)
	}
}

func TestProviderOnlyUserHasNoPasswordLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserParams{
		Email:      "oauth@example.com",
		Provider:   "google",
		ProviderID: "g-123",
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := svc.Authenticate(ctx, "oauth@example.com", "anything")
	if err != nil || got != nil {
		t.Fatalf("provider-only user authenticated with password: %+v, %v", got, err)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserParams{Email: "jwt@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, token, err := svc.Login(ctx, "jwt@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}

	authedCtx, err := svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != created.ID || rd.Email != "jwt@example.com" {
		t.Fatalf("unexpected request data: %+v", rd)
	}

	if _, err := svc.SetContextFromToken(ctx, token+"tampered"); err == nil {
		t.Fatalf("tampered token accepted")
	}

	_, _, err = svc.Login(ctx, "jwt@example.com", "wrong")
	if apiErr := apierr.From(err); apiErr == nil || apiErr.Status != 401 {
		t.Fatalf("wrong password login: %v", err)
	}
}

func TestCreateDemoUser(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	u, creds, token, err := svc.CreateDemoUser(ctx)
	if err != nil {
		t.Fatalf("CreateDemoUser: %v", err)
	}
	if !u.IsDemo {
		t.Fatalf("demo flag not set")
	}
	if !strings.HasPrefix(creds.Email, "demo_") || !strings.HasSuffix(creds.Email, "@demo.com") {
		t.Fatalf("unexpected demo email: %s", creds.Email)
	}
	if token == "" {
		t.Fatalf("no token issued")
	}

	// The returned plaintext credentials work exactly like a normal login.
	got, err := svc.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil || got == nil {
		t.Fatalf("demo credentials rejected: %v", err)
	}

	isDemo, err := svc.GetDemoFlag(ctx, creds.Email)
	if err != nil || !isDemo {
		t.Fatalf("GetDemoFlag: %v %v", isDemo, err)
	}
	if err := svc.SetDemoFlag(ctx, creds.Email, false); err != nil {
		t.Fatalf("SetDemoFlag: %v", err)
	}
	isDemo, err = svc.GetDemoFlag(ctx, creds.Email)
	if err != nil || isDemo {
		t.Fatalf("demo flag not cleared: %v %v", isDemo, err)
	}
}

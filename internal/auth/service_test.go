package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/repository"
	"github.com/Soujiro-a/Menuger/internal/token"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	findByNicknameFn func(ctx context.Context, nickname string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
	updateFn         func(ctx context.Context, user *model.User) error
	deleteByIDFn     func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByNickname(ctx context.Context, nickname string) (*model.User, error) {
	if m.findByNicknameFn != nil {
		return m.findByNicknameFn(ctx, nickname)
	}
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockIssuer struct {
	issueFn func(userID string, kind token.Kind) (string, error)
}

func (m *mockIssuer) Issue(userID string, kind token.Kind) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID, kind)
	}
	return "token-" + string(kind), nil
}

// --- テスト ---

// TestSignup_Success はサインアップが成功し、パスワードがハッシュ化されることを検証する。
func TestSignup_Success(t *testing.T) {
	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := NewService(userRepo, &mockIssuer{})

	user, err := svc.Signup(context.Background(), "cook@example.com", "ryori_taro", "abcdefg1")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if user.ID == "" {
		t.Error("expected generated user ID")
	}
	if user.PasswordHash == "abcdefg1" {
		t.Error("password must not be stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("abcdefg1")); err != nil {
		t.Errorf("stored hash does not match original password: %v", err)
	}
}

// TestSignup_ValidationErrors は形式検証エラーがストレージ到達前に返ることを検証する。
func TestSignup_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		nickname string
		password string
		wantCode string
	}{
		{"メールアドレス形式不正", "not-an-email", "taro", "abcdefg1", model.ErrCodeInvalidEmail},
		{"メールアドレス空", "", "taro", "abcdefg1", model.ErrCodeInvalidEmail},
		{"ニックネームが短すぎる", "a@example.com", "t", "abcdefg1", model.ErrCodeInvalidNickname},
		{"ニックネームに記号", "a@example.com", "taro!", "abcdefg1", model.ErrCodeInvalidNickname},
		{"パスワードが短すぎる", "a@example.com", "taro", "abc1", model.ErrCodeInvalidPassword},
		{"パスワードに大文字", "a@example.com", "taro", "Abcdefg1", model.ErrCodeInvalidPassword},
		{"パスワードに数字なし", "a@example.com", "taro", "abcdefgh", model.ErrCodeInvalidPassword},
		{"パスワードに小文字なし", "a@example.com", "taro", "12345678", model.ErrCodeInvalidPassword},
	}

	storageTouched := false
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			storageTouched = true
			return nil, nil
		},
	}
	svc := NewService(userRepo, &mockIssuer{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.email, tt.nickname, tt.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, apiErr.Code)
			}
		})
	}
	if storageTouched {
		t.Error("validation errors must be returned before touching storage")
	}
}

// TestSignup_Conflict はメールアドレス・ニックネームの重複が区別されることを検証する。
func TestSignup_Conflict(t *testing.T) {
	existing := &model.User{ID: "user-1", Email: "cook@example.com", Nickname: "ryori_taro"}

	t.Run("メールアドレス重複", func(t *testing.T) {
		userRepo := &mockUserRepo{
			findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
				return existing, nil
			},
		}
		svc := NewService(userRepo, &mockIssuer{})

		_, err := svc.Signup(context.Background(), "cook@example.com", "other_name", "abcdefg1")
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
			t.Errorf("expected EMAIL_TAKEN, got %v", err)
		}
	})

	t.Run("ニックネーム重複", func(t *testing.T) {
		userRepo := &mockUserRepo{
			findByNicknameFn: func(ctx context.Context, nickname string) (*model.User, error) {
				return existing, nil
			},
		}
		svc := NewService(userRepo, &mockIssuer{})

		_, err := svc.Signup(context.Background(), "other@example.com", "ryori_taro", "abcdefg1")
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNicknameTaken {
			t.Errorf("expected NICKNAME_TAKEN, got %v", err)
		}
	})
}

// TestSignup_RaceOnInsert は事前チェック通過後のINSERT衝突がコンフリクトとして扱われることを検証する。
func TestSignup_RaceOnInsert(t *testing.T) {
	calls := 0
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			calls++
			// 1回目（事前チェック）は未登録、2回目（衝突後の再検索）は登録済み
			if calls == 1 {
				return nil, nil
			}
			return &model.User{ID: "user-2", Email: email}, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateKey
		},
	}
	svc := NewService(userRepo, &mockIssuer{})

	_, err := svc.Signup(context.Background(), "cook@example.com", "ryori_taro", "abcdefg1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("expected EMAIL_TAKEN after insert conflict, got %v", err)
	}
}

// TestSignin_Success はサインインがトークンペアを発行することを検証する。
func TestSignin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("abcdefg1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	issuedKinds := []token.Kind{}
	issuer := &mockIssuer{
		issueFn: func(userID string, kind token.Kind) (string, error) {
			issuedKinds = append(issuedKinds, kind)
			return "signed-" + string(kind), nil
		},
	}
	svc := NewService(userRepo, issuer)

	user, pair, err := svc.Signin(context.Background(), "cook@example.com", "abcdefg1")
	if err != nil {
		t.Fatalf("Signin returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("expected user-1, got %s", user.ID)
	}
	if pair.AccessToken != "signed-access" || pair.RefreshToken != "signed-refresh" {
		t.Errorf("unexpected token pair: %+v", pair)
	}
	if len(issuedKinds) != 2 || issuedKinds[0] != token.KindAccess || issuedKinds[1] != token.KindRefresh {
		t.Errorf("expected access+refresh issuance, got %v", issuedKinds)
	}
}

// TestSignin_Unauthorized はユーザー未登録とパスワード不一致が
// 同一のエラーを返すことを検証する。
func TestSignin_Unauthorized(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("abcdefg1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	tests := []struct {
		name string
		repo *mockUserRepo
	}{
		{
			name: "ユーザー未登録",
			repo: &mockUserRepo{},
		},
		{
			name: "パスワード不一致",
			repo: &mockUserRepo{
				findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
					return &model.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
				},
			},
		},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo, &mockIssuer{})
			_, _, err := svc.Signin(context.Background(), "cook@example.com", "wrongpass1")
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
				t.Fatalf("expected UNAUTHORIZED, got %v", err)
			}
			messages = append(messages, apiErr.Message)
		})
	}
	if len(messages) == 2 && messages[0] != messages[1] {
		t.Error("credential errors must not reveal which part was wrong")
	}
}

// TestValidateEmail は利用可能性チェックを検証する。
func TestValidateEmail(t *testing.T) {
	t.Run("利用可能", func(t *testing.T) {
		svc := NewService(&mockUserRepo{}, &mockIssuer{})
		if err := svc.ValidateEmail(context.Background(), "new@example.com"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("形式不正", func(t *testing.T) {
		svc := NewService(&mockUserRepo{}, &mockIssuer{})
		err := svc.ValidateEmail(context.Background(), "bad-email")
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidEmail {
			t.Errorf("expected INVALID_EMAIL, got %v", err)
		}
	})

	t.Run("使用済み", func(t *testing.T) {
		repo := &mockUserRepo{
			findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
				return &model.User{ID: "user-1"}, nil
			},
		}
		svc := NewService(repo, &mockIssuer{})
		err := svc.ValidateEmail(context.Background(), "used@example.com")
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
			t.Errorf("expected EMAIL_TAKEN, got %v", err)
		}
	})
}

// TestValidateNickname は利用可能性チェックを検証する。
func TestValidateNickname(t *testing.T) {
	t.Run("利用可能", func(t *testing.T) {
		svc := NewService(&mockUserRepo{}, &mockIssuer{})
		if err := svc.ValidateNickname(context.Background(), "ryori_taro"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("日本語ニックネームが許可される", func(t *testing.T) {
		svc := NewService(&mockUserRepo{}, &mockIssuer{})
		if err := svc.ValidateNickname(context.Background(), "料理太郎"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("使用済み", func(t *testing.T) {
		repo := &mockUserRepo{
			findByNicknameFn: func(ctx context.Context, nickname string) (*model.User, error) {
				return &model.User{ID: "user-1"}, nil
			},
		}
		svc := NewService(repo, &mockIssuer{})
		err := svc.ValidateNickname(context.Background(), "ryori_taro")
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNicknameTaken {
			t.Errorf("expected NICKNAME_TAKEN, got %v", err)
		}
	})
}

// Package auth はサインアップ、サインイン、トークン発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/repository"
	"github.com/Soujiro-a/Menuger/internal/token"
)

// 入力値の形式検証用パターン。
// パスワードは英小文字と数字のみの8文字以上で、両方を最低1文字ずつ含むこと。
var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\p{Hiragana}\p{Katakana}\p{Han}\p{Hangul}]{2,20}$`)
	passwordPattern = regexp.MustCompile(`^[a-z0-9]{8,}$`)
	hasLowerPattern = regexp.MustCompile(`[a-z]`)
	hasDigitPattern = regexp.MustCompile(`[0-9]`)
)

// TokenPair はサインイン成功時に発行されるアクセス・リフレッシュトークンの組。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer はトークン発行機能のインターフェース。
type TokenIssuer interface {
	Issue(userID string, kind token.Kind) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	issuer   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, issuer TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		issuer:   issuer,
	}
}

// Signup は新規ユーザーを登録する。
// メールアドレス・ニックネーム・パスワードの形式を検証してから
// 一意性を確認し、パスワードをbcryptでハッシュ化して永続化する。
// 一意性はデータベースの一意制約でも最終的に保証されるため、
// 事前チェックとINSERTの間の競合はErrDuplicateKeyとして扱う。
func (s *Service) Signup(ctx context.Context, email, nickname, password string) (*model.User, error) {
	if err := validateEmailFormat(email); err != nil {
		return nil, err
	}
	if err := validateNicknameFormat(nickname); err != nil {
		return nil, err
	}
	if err := validatePasswordFormat(password); err != nil {
		return nil, err
	}

	// 事前の一意性チェック。クライアントへ正確なエラーコードを返すための
	// ベストエフォートであり、最終的な保証はデータベースの一意制約が行う。
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	existing, err = s.userRepo.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to check nickname uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewNicknameTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Nickname:     nickname,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェックをすり抜けた同時サインアップ。
		// どちらの列が衝突したかをINSERTエラーからは区別できないため再検索する。
		if errors.Is(err, repository.ErrDuplicateKey) {
			if byEmail, ferr := s.userRepo.FindByEmail(ctx, email); ferr == nil && byEmail != nil {
				return nil, model.NewEmailTakenError()
			}
			return nil, model.NewNicknameTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user signed up",
		slog.String("user_id", user.ID),
		slog.String("nickname", user.Nickname),
	)

	return user, nil
}

// Signin はメールアドレスとパスワードを検証し、トークンペアを発行する。
// ユーザーが存在しない場合とパスワード不一致の場合を区別せず、
// どちらも同一の未認証エラーを返す（どちらが誤りかを漏らさないため）。
func (s *Service) Signin(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewUnauthorizedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, model.NewUnauthorizedError()
	}

	accessToken, err := s.issuer.Issue(user.ID, token.KindAccess)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.issuer.Issue(user.ID, token.KindRefresh)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	slog.Info("user signed in", slog.String("user_id", user.ID))

	return user, &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateEmail はメールアドレスの形式と利用可能性を検証する。
// 副作用はなく、現在のストレージ状態に対するチェックのみを行う。
// 同時サインアップとの競合はあり得るが、最終的な一意性は
// Signup時に再度強制されるため許容する。
func (s *Service) ValidateEmail(ctx context.Context, email string) error {
	if err := validateEmailFormat(email); err != nil {
		return err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email availability: %w", err)
	}
	if existing != nil {
		return model.NewEmailTakenError()
	}
	return nil
}

// ValidateNickname はニックネームの形式と利用可能性を検証する。
func (s *Service) ValidateNickname(ctx context.Context, nickname string) error {
	if err := validateNicknameFormat(nickname); err != nil {
		return err
	}

	existing, err := s.userRepo.FindByNickname(ctx, nickname)
	if err != nil {
		return fmt.Errorf("failed to check nickname availability: %w", err)
	}
	if existing != nil {
		return model.NewNicknameTakenError()
	}
	return nil
}

// validateEmailFormat はメールアドレスの形式を検証する。
func validateEmailFormat(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return model.NewInvalidEmailError()
	}
	return nil
}

// validateNicknameFormat はニックネームの形式を検証する。
func validateNicknameFormat(nickname string) error {
	if nickname == "" || !nicknamePattern.MatchString(nickname) {
		return model.NewInvalidNicknameError()
	}
	return nil
}

// validatePasswordFormat はパスワードの形式を検証する。
// 英小文字と数字のみで構成された8文字以上、かつ両方を最低1文字ずつ含むこと。
func validatePasswordFormat(password string) error {
	if !passwordPattern.MatchString(password) {
		return model.NewInvalidPasswordError()
	}
	if !hasLowerPattern.MatchString(password) || !hasDigitPattern.MatchString(password) {
		return model.NewInvalidPasswordError()
	}
	return nil
}

// Package user はユーザー管理と購読関係のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Soujiro-a/Menuger/internal/model"
	"github.com/Soujiro-a/Menuger/internal/repository"
)

var (
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\p{Hiragana}\p{Katakana}\p{Han}\p{Hangul}]{2,20}$`)
	passwordPattern = regexp.MustCompile(`^[a-z0-9]{8,}$`)
	hasLowerPattern = regexp.MustCompile(`[a-z]`)
	hasDigitPattern = regexp.MustCompile(`[0-9]`)
)

// ProfileUpdate はプロフィール更新の入力。
// nilのフィールドは変更しない。
type ProfileUpdate struct {
	Nickname *string
	Password *string
}

// Service はユーザー管理のサービス層。
// プロフィール取得・更新、退会、購読・購読解除のビジネスロジックを提供する。
type Service struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *Service {
	return &Service{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// GetProfile はニックネームで公開プロフィールを取得する。
// フォロワー・フォロー中のニックネーム一覧を含む。
func (s *Service) GetProfile(ctx context.Context, nickname string) (*model.Profile, error) {
	user, err := s.userRepo.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(nickname)
	}

	followers, err := s.followRepo.ListFollowerNicknames(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("フォロワー一覧の取得に失敗しました: %w", err)
	}
	following, err := s.followRepo.ListFollowingNicknames(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("フォロー中一覧の取得に失敗しました: %w", err)
	}

	return &model.Profile{
		Nickname:  user.Nickname,
		Followers: followers,
		Following: following,
		CreatedAt: user.CreatedAt,
	}, nil
}

// UpdateProfile はニックネームまたはパスワードを更新する。
// どちらも指定されていない場合はリクエスト不正として扱う。
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*model.User, error) {
	if update.Nickname == nil && update.Password == nil {
		return nil, model.NewInvalidRequestError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	if update.Nickname != nil {
		nickname := *update.Nickname
		if !nicknamePattern.MatchString(nickname) {
			return nil, model.NewInvalidNicknameError()
		}
		user.Nickname = nickname
	}

	if update.Password != nil {
		password := *update.Password
		if !passwordPattern.MatchString(password) ||
			!hasLowerPattern.MatchString(password) || !hasDigitPattern.MatchString(password) {
			return nil, model.NewInvalidPasswordError()
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, model.NewNicknameTakenError()
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	slog.Info("profile updated", slog.String("user_id", userID))
	return user, nil
}

// DeleteAccount はユーザーの退会処理を実行する。
// 購読関係（両方向）とレシピはリポジトリ層の同一トランザクションで
// 削除されるため、他ユーザーの隣接集合に削除済みIDが残ることはない。
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUnauthorizedError()
	}

	slog.Info("退会処理を開始します", slog.String("user_id", userID))

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました", slog.String("user_id", userID))
	return nil
}

// Subscribe は指定ニックネームのユーザーを購読する。
// 自分自身への購読は拒否する。既に購読済みの場合は何もせず成功を返す。
func (s *Service) Subscribe(ctx context.Context, selfID, targetNickname string) error {
	target, err := s.resolveTarget(ctx, targetNickname)
	if err != nil {
		return err
	}
	if target.ID == selfID {
		return model.NewSelfSubscribeError()
	}

	// ON CONFLICT DO NOTHINGの1文書き込みなので、並行する購読・解除で
	// 片側だけ更新された状態は生じない
	if err := s.followRepo.Create(ctx, selfID, target.ID); err != nil {
		return fmt.Errorf("購読の登録に失敗しました: %w", err)
	}

	slog.Info("user subscribed",
		slog.String("follower_id", selfID),
		slog.String("followee_id", target.ID),
	)
	return nil
}

// Unsubscribe は指定ニックネームのユーザーの購読を解除する。
// 購読していなかった場合は何もせず成功を返す。自分自身を指定した場合も
// 購読関係は存在し得ないため、同じく何もせず成功を返す。
func (s *Service) Unsubscribe(ctx context.Context, selfID, targetNickname string) error {
	target, err := s.resolveTarget(ctx, targetNickname)
	if err != nil {
		return err
	}

	if err := s.followRepo.Delete(ctx, selfID, target.ID); err != nil {
		return fmt.Errorf("購読の解除に失敗しました: %w", err)
	}

	slog.Info("user unsubscribed",
		slog.String("follower_id", selfID),
		slog.String("followee_id", target.ID),
	)
	return nil
}

// resolveTarget は購読対象のニックネームをユーザーに解決する。
func (s *Service) resolveTarget(ctx context.Context, targetNickname string) (*model.User, error) {
	target, err := s.userRepo.FindByNickname(ctx, targetNickname)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return nil, model.NewUserNotFoundError(targetNickname)
	}
	return target, nil
}

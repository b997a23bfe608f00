package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/domain"
	"gorm.io/gorm"
)

// Find resolves a user by id. Unknown ids are a NO_USER domain failure,
// never a storage error.
func Find(userID uint) (*db.User, error) {
	return find(db.DB, userID)
}

func find(conn *gorm.DB, userID uint) (*db.User, error) {
	var u db.User
	err := conn.First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.E(domain.CodeNoUser, "user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	return &u, nil
}

// Exists is Find without materializing the row.
func Exists(conn *gorm.DB, userID uint) error {
	var count int64
	if err := conn.Model(&db.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if count == 0 {
		return domain.E(domain.CodeNoUser, "user %d not found", userID)
	}
	return nil
}

// GetOrCreateBySocial backs the social-login exchange: the first login
// creates the account, later logins return it unchanged.
func GetOrCreateBySocial(socialID, email, username string) (*db.User, error) {
	socialID = strings.TrimSpace(socialID)
	if socialID == "" {
		return nil, domain.E(domain.CodeNullValue, "social id is required")
	}

	var u db.User
	err := db.DB.Where("social_id = ?", socialID).
		Attrs(db.User{Email: email, Username: username}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, fmt.Errorf("get or create user by social id: %w", err)
	}
	return &u, nil
}

func UpdateUsername(userID uint, username string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.E(domain.CodeNullValue, "username is required")
	}
	u, err := Find(userID)
	if err != nil {
		return nil, err
	}
	u.Username = username
	if err := db.DB.Save(u).Error; err != nil {
		return nil, fmt.Errorf("update username for user %d: %w", userID, err)
	}
	return u, nil
}

func SetDeviceToken(userID uint, token string) error {
	if err := Exists(db.DB, userID); err != nil {
		return err
	}
	err := db.DB.Model(&db.User{}).Where("id = ?", userID).
		Update("device_token", token).Error
	if err != nil {
		return fmt.Errorf("set device token for user %d: %w", userID, err)
	}
	return nil
}

func SetTelegramChat(userID uint, chatID int64) error {
	if err := Exists(db.DB, userID); err != nil {
		return err
	}
	err := db.DB.Model(&db.User{}).Where("id = ?", userID).
		Update("telegram_chat_id", chatID).Error
	if err != nil {
		return fmt.Errorf("set telegram chat for user %d: %w", userID, err)
	}
	return nil
}

// CanActFor is the authorization gate. A caller may act for an owner when
// they are the same identity or when an accepted member link exists from
// caller to owner. Existence of the parties is the caller's concern; this
// only answers the rights question with NO_MEMBER on rejection.
func CanActFor(conn *gorm.DB, callerID, ownerID uint) error {
	if callerID == ownerID {
		return nil
	}
	var count int64
	err := conn.Model(&db.MemberLink{}).
		Where("user_id = ? AND member_id = ? AND accepted = ?", callerID, ownerID, true).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check member link %d->%d: %w", callerID, ownerID, err)
	}
	if count == 0 {
		return domain.E(domain.CodeNoMember, "user %d is not linked to member %d", callerID, ownerID)
	}
	return nil
}

// AddMember creates a pending link request from caller to member. The
// member has to accept before the caller gains any access.
func AddMember(callerID, memberID uint, memberName string) (*db.MemberLink, error) {
	if callerID == memberID {
		return nil, domain.E(domain.CodeNullValue, "cannot add yourself as a member")
	}
	if err := Exists(db.DB, callerID); err != nil {
		return nil, err
	}
	member, err := Find(memberID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(memberName) == "" {
		memberName = member.Username
	}

	link := db.MemberLink{UserID: callerID, MemberID: memberID, MemberName: memberName}
	err = db.DB.Where("user_id = ? AND member_id = ?", callerID, memberID).
		FirstOrCreate(&link).Error
	if err != nil {
		return nil, fmt.Errorf("create member link %d->%d: %w", callerID, memberID, err)
	}
	return &link, nil
}

// AcceptMember lets the target of a link request approve it. Only the
// member named by the link may accept.
func AcceptMember(memberID, linkID uint) (*db.MemberLink, error) {
	var link db.MemberLink
	err := db.DB.First(&link, linkID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.E(domain.CodeNoMember, "member link %d not found", linkID)
	}
	if err != nil {
		return nil, fmt.Errorf("find member link %d: %w", linkID, err)
	}
	if link.MemberID != memberID {
		return nil, domain.E(domain.CodeNoMember, "link %d is not addressed to user %d", linkID, memberID)
	}
	if link.Accepted {
		return &link, nil
	}
	link.Accepted = true
	link.UpdatedAt = time.Now().UTC()
	if err := db.DB.Save(&link).Error; err != nil {
		return nil, fmt.Errorf("accept member link %d: %w", linkID, err)
	}
	return &link, nil
}

// Members lists the caller's outgoing links, accepted or pending.
func Members(userID uint) ([]db.MemberLink, error) {
	if err := Exists(db.DB, userID); err != nil {
		return nil, err
	}
	var links []db.MemberLink
	err := db.DB.Where("user_id = ?", userID).Order("id ASC").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("list members of user %d: %w", userID, err)
	}
	return links, nil
}

package user

import (
	"testing"

	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/domain"
	"github.com/pillme-team/pillme-server/pkg/internal/testutil"
)

func createUser(t *testing.T, username, socialID string) *db.User {
	t.Helper()
	u := db.User{Username: username, SocialID: socialID, Email: socialID + "@example.com"}
	if err := db.DB.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user fixture: %v", err)
	}
	return &u
}

func TestFindUnknownUser(t *testing.T) {
	testutil.SetupTestDB(t)

	_, err := Find(12345)
	if !domain.HasCode(err, domain.CodeNoUser) {
		t.Fatalf("expected NO_USER, got %v", err)
	}
}

func TestGetOrCreateBySocialIsIdempotent(t *testing.T) {
	testutil.SetupTestDB(t)

	first, err := GetOrCreateBySocial("kakao-1", "a@example.com", "alice")
	if err != nil {
		t.Fatalf("first exchange failed: %v", err)
	}
	second, err := GetOrCreateBySocial("kakao-1", "other@example.com", "other")
	if err != nil {
		t.Fatalf("second exchange failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same user, got %d and %d", first.ID, second.ID)
	}
	if second.Username != "alice" {
		t.Fatalf("second exchange must not overwrite the profile, got %q", second.Username)
	}
}

func TestGetOrCreateBySocialRequiresSocialID(t *testing.T) {
	testutil.SetupTestDB(t)

	_, err := GetOrCreateBySocial("  ", "a@example.com", "alice")
	if !domain.HasCode(err, domain.CodeNullValue) {
		t.Fatalf("expected NULL_VALUE, got %v", err)
	}
}

func TestCanActForSelf(t *testing.T) {
	testutil.SetupTestDB(t)
	u := createUser(t, "alice", "s1")

	if err := CanActFor(db.DB, u.ID, u.ID); err != nil {
		t.Fatalf("self access must always be allowed, got %v", err)
	}
}

func TestCanActForRequiresAcceptedLink(t *testing.T) {
	testutil.SetupTestDB(t)
	caller := createUser(t, "alice", "s1")
	member := createUser(t, "bob", "s2")

	if err := CanActFor(db.DB, caller.ID, member.ID); !domain.HasCode(err, domain.CodeNoMember) {
		t.Fatalf("expected NO_MEMBER without a link, got %v", err)
	}

	link, err := AddMember(caller.ID, member.ID, "dad")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if err := CanActFor(db.DB, caller.ID, member.ID); !domain.HasCode(err, domain.CodeNoMember) {
		t.Fatalf("pending link must not grant access, got %v", err)
	}

	if _, err := AcceptMember(member.ID, link.ID); err != nil {
		t.Fatalf("AcceptMember failed: %v", err)
	}
	if err := CanActFor(db.DB, caller.ID, member.ID); err != nil {
		t.Fatalf("accepted link must grant access, got %v", err)
	}

	// the link is directional
	if err := CanActFor(db.DB, member.ID, caller.ID); !domain.HasCode(err, domain.CodeNoMember) {
		t.Fatalf("expected NO_MEMBER in the reverse direction, got %v", err)
	}
}

func TestAddMemberRejectsSelfAndUnknown(t *testing.T) {
	testutil.SetupTestDB(t)
	caller := createUser(t, "alice", "s1")

	if _, err := AddMember(caller.ID, caller.ID, ""); !domain.HasCode(err, domain.CodeNullValue) {
		t.Fatalf("expected NULL_VALUE for self link, got %v", err)
	}
	if _, err := AddMember(caller.ID, 999, ""); !domain.HasCode(err, domain.CodeNoUser) {
		t.Fatalf("expected NO_USER for unknown member, got %v", err)
	}
}

func TestAcceptMemberOnlyByAddressee(t *testing.T) {
	testutil.SetupTestDB(t)
	caller := createUser(t, "alice", "s1")
	member := createUser(t, "bob", "s2")
	stranger := createUser(t, "eve", "s3")

	link, err := AddMember(caller.ID, member.ID, "")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	if _, err := AcceptMember(stranger.ID, link.ID); !domain.HasCode(err, domain.CodeNoMember) {
		t.Fatalf("expected NO_MEMBER for a stranger accepting, got %v", err)
	}

	accepted, err := AcceptMember(member.ID, link.ID)
	if err != nil {
		t.Fatalf("AcceptMember failed: %v", err)
	}
	if !accepted.Accepted {
		t.Fatal("link should be accepted")
	}

	// accepting twice is a no-op success
	if _, err := AcceptMember(member.ID, link.ID); err != nil {
		t.Fatalf("repeated accept must succeed, got %v", err)
	}
}

func TestMembersList(t *testing.T) {
	testutil.SetupTestDB(t)
	caller := createUser(t, "alice", "s1")
	m1 := createUser(t, "bob", "s2")
	m2 := createUser(t, "carol", "s3")

	if _, err := AddMember(caller.ID, m1.ID, "dad"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := AddMember(caller.ID, m2.ID, ""); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	links, err := Members(caller.ID)
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].MemberName != "dad" {
		t.Fatalf("expected custom member name, got %q", links[0].MemberName)
	}
	if links[1].MemberName != "carol" {
		t.Fatalf("expected fallback to username, got %q", links[1].MemberName)
	}
}

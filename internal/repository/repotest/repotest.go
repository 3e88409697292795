// Package repotest holds behaviour tests shared by every repository.Store
// implementation. Each backend's tests call Run with a constructor that
// returns a fresh, empty store.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
)

// base is a fixed, millisecond-aligned instant so every backend stores
// and returns identical times.
var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Run exercises newStore against the repository contracts.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Skills", func(t *testing.T) { testSkills(t, newStore(t)) })
	t.Run("SkillsNonASCII", func(t *testing.T) { testSkillsNonASCII(t, newStore(t)) })
	t.Run("Swaps", func(t *testing.T) { testSwaps(t, newStore(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
}

// NewUser returns a public user created n seconds after base.
func NewUser(id, email string, n int) *model.User {
	at := base.Add(time.Duration(n) * time.Second)
	return &model.User{
		ID:           id,
		Email:        email,
		Username:     id,
		PasswordHash: "hash",
		Privacy:      model.PrivacyPublic,
		Availability: model.DefaultAvailability,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func newSkill(id, userID, name, desc, category string, n int) *model.Skill {
	return &model.Skill{
		ID:          id,
		UserID:      userID,
		SkillName:   name,
		Description: desc,
		Category:    category,
		CreatedAt:   base.Add(time.Duration(n) * time.Second),
	}
}

func testUsers(t *testing.T, st repository.Store) {
	ctx := context.Background()
	users := st.Users

	require.NoError(t, users.Create(ctx, NewUser("alice", "Alice@X.com", 1)))
	err := users.Create(ctx, NewUser("alice2", "alice@x.COM", 2))
	require.ErrorIs(t, err, repository.ErrEmailExists)

	got, err := users.GetByEmail(ctx, "ALICE@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice", got.ID)
	require.Equal(t, "alice@x.com", got.Email)

	_, err = users.GetByID(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = users.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	loc := "Lisbon"
	got, err = users.Update(ctx, "alice", model.UserUpdate{Location: &loc})
	require.NoError(t, err)
	require.Equal(t, "Lisbon", got.Location)
	require.Equal(t, "alice", got.Username, "fields not named in the update are kept")

	_, err = users.Update(ctx, "nobody", model.UserUpdate{Location: &loc})
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	bob := NewUser("bob", "bob@x.com", 3)
	require.NoError(t, users.Create(ctx, bob))
	carol := NewUser("carol", "carol@x.com", 4)
	carol.Privacy = model.PrivacyPrivate
	require.NoError(t, users.Create(ctx, carol))

	public, err := users.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
	require.Equal(t, "bob", public[0].ID, "newest first")
	require.Equal(t, "alice", public[1].ID)
}

func testSkills(t *testing.T, st repository.Store) {
	ctx := context.Background()
	require.NoError(t, st.Users.Create(ctx, NewUser("alice", "a@x.com", 1)))
	hidden := NewUser("hidden", "h@x.com", 2)
	hidden.Privacy = model.PrivacyPrivate
	require.NoError(t, st.Users.Create(ctx, hidden))

	skills := st.Skills
	require.NoError(t, skills.Create(ctx, model.SkillOffered, newSkill("s1", "alice", "Guitar Basics", "chords and strumming", "Music", 10)))
	require.NoError(t, skills.Create(ctx, model.SkillOffered, newSkill("s2", "alice", "Sourdough", "bread at home", "Cooking", 20)))
	require.NoError(t, skills.Create(ctx, model.SkillOffered, newSkill("s3", "hidden", "Guitar Solos", "", "Music", 30)))
	require.NoError(t, skills.Create(ctx, model.SkillWanted, newSkill("w1", "alice", "Piano", "", "Music", 40)))

	mine, err := skills.ListByUser(ctx, model.SkillOffered, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "s2", mine[0].ID)

	all, err := skills.ListAll(ctx, model.SkillOffered)
	require.NoError(t, err)
	require.Len(t, all, 2, "private owners are not listed")
	require.Equal(t, "s2", all[0].ID)
	require.NotNil(t, all[0].User)
	require.Equal(t, "alice", all[0].User.ID)

	found, err := skills.Search(ctx, model.SkillOffered, "guit")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Guitar Basics", found[0].SkillName)

	found, err = skills.Search(ctx, model.SkillOffered, "BREAD")
	require.NoError(t, err)
	require.Len(t, found, 1, "description matches too")

	found, err = skills.Search(ctx, model.SkillOffered, "100%")
	require.NoError(t, err)
	require.Empty(t, found, "wildcards in the term are literal")

	wanted, err := skills.ListAll(ctx, model.SkillWanted)
	require.NoError(t, err)
	require.Len(t, wanted, 1)

	byCat, err := skills.ListByCategory(ctx, model.SkillOffered, "music")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	require.Equal(t, "s1", byCat[0].ID)

	deleted, err := skills.Delete(ctx, model.SkillOffered, "s1", "hidden")
	require.NoError(t, err)
	require.False(t, deleted)
	mine, _ = skills.ListByUser(ctx, model.SkillOffered, "alice")
	require.Len(t, mine, 2, "a foreign delete leaves the skill in place")

	deleted, err = skills.Delete(ctx, model.SkillOffered, "s1", "alice")
	require.NoError(t, err)
	require.True(t, deleted)
	mine, _ = skills.ListByUser(ctx, model.SkillOffered, "alice")
	require.Len(t, mine, 1)
}

func testSkillsNonASCII(t *testing.T, st repository.Store) {
	ctx := context.Background()
	require.NoError(t, st.Users.Create(ctx, NewUser("alice", "a@x.com", 1)))
	skills := st.Skills
	require.NoError(t, skills.Create(ctx, model.SkillOffered, newSkill("s1", "alice", "École Française", "Grammaire für Anfänger", "Éducation", 10)))
	require.NoError(t, skills.Create(ctx, model.SkillOffered, newSkill("s2", "alice", "Русский язык", "", "Языки", 20)))

	found, err := skills.Search(ctx, model.SkillOffered, "école")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "s1", found[0].ID)

	found, err = skills.Search(ctx, model.SkillOffered, "FÜR")
	require.NoError(t, err)
	require.Len(t, found, 1, "description folds beyond ASCII")

	found, err = skills.Search(ctx, model.SkillOffered, "РУССКИЙ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "s2", found[0].ID)

	byCat, err := skills.ListByCategory(ctx, model.SkillOffered, "éducation")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	require.Equal(t, "s1", byCat[0].ID)

	byCat, err = skills.ListByCategory(ctx, model.SkillOffered, "ЯЗЫКИ")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	require.Equal(t, "s2", byCat[0].ID)
}

func testSwaps(t *testing.T, st repository.Store) {
	ctx := context.Background()
	require.NoError(t, st.Users.Create(ctx, NewUser("alice", "a@x.com", 1)))
	require.NoError(t, st.Users.Create(ctx, NewUser("bob", "b@x.com", 2)))
	require.NoError(t, st.Skills.Create(ctx, model.SkillOffered, newSkill("s1", "alice", "Guitar Basics", "", "Music", 3)))
	require.NoError(t, st.Skills.Create(ctx, model.SkillWanted, newSkill("w1", "alice", "Piano", "", "Music", 4)))

	first := &model.SwapRequest{
		ID: "x1", RequesterID: "alice", ReceiverID: "bob", OfferedSkillID: "s1", WantedSkillID: "w1",
		Message: "hi", Status: model.SwapPending, CreatedAt: base.Add(10 * time.Second), UpdatedAt: base.Add(10 * time.Second),
	}
	second := &model.SwapRequest{
		ID: "x2", RequesterID: "bob", ReceiverID: "alice", OfferedSkillID: "gone", WantedSkillID: "gone",
		Status: model.SwapPending, CreatedAt: base.Add(20 * time.Second), UpdatedAt: base.Add(20 * time.Second),
	}
	require.NoError(t, st.Swaps.Create(ctx, first))
	require.NoError(t, st.Swaps.Create(ctx, second))

	list, err := st.Swaps.ListByUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "x2", list[0].ID, "newest first")
	require.Equal(t, "x1", list[1].ID)
	require.NotNil(t, list[1].Requester)
	require.Equal(t, "alice", list[1].Requester.ID)
	require.NotNil(t, list[1].OfferedSkill)
	require.Equal(t, "Guitar Basics", list[1].OfferedSkill.SkillName)
	require.Nil(t, list[0].OfferedSkill, "dangling skill ids have no summary")

	_, err = st.Swaps.UpdateStatus(ctx, "x1", model.SwapAccepted, "alice")
	require.ErrorIs(t, err, repository.ErrSwapNotFound, "the requester cannot set the status")
	w, err := st.Swaps.GetByID(ctx, "x1")
	require.NoError(t, err)
	require.Equal(t, model.SwapPending, w.Status)

	w, err = st.Swaps.UpdateStatus(ctx, "x1", model.SwapAccepted, "bob")
	require.NoError(t, err)
	require.Equal(t, model.SwapAccepted, w.Status)

	list, err = st.Swaps.ListByUser(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, model.SwapAccepted, list[1].Status)

	_, err = st.Swaps.GetByID(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrSwapNotFound)
}

func testSessions(t *testing.T, st repository.Store) {
	ctx := context.Background()
	require.NoError(t, st.Users.Create(ctx, NewUser("alice", "a@x.com", 1)))
	now := time.Now().UTC().Truncate(time.Millisecond)
	mk := func(id, hash string, exp time.Time) model.RefreshToken {
		return model.RefreshToken{ID: id, UserID: "alice", TokenHash: hash, ExpiresAt: exp, CreatedAt: now}
	}
	sess := st.Sessions
	require.NoError(t, sess.StoreRefresh(ctx, mk("r1", "h1", now.Add(time.Hour))))
	require.NoError(t, sess.StoreRefresh(ctx, mk("r2", "h2", now.Add(time.Hour))))
	require.NoError(t, sess.StoreRefresh(ctx, mk("r3", "h3", now.Add(-time.Minute))))

	uid, err := sess.ValidateRefresh(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, "alice", uid)

	_, err = sess.ValidateRefresh(ctx, "h3")
	require.ErrorIs(t, err, repository.ErrSessionInvalid, "expired")
	_, err = sess.ValidateRefresh(ctx, "unknown")
	require.ErrorIs(t, err, repository.ErrSessionInvalid)

	require.NoError(t, sess.RevokeByHash(ctx, "h1"))
	_, err = sess.ValidateRefresh(ctx, "h1")
	require.ErrorIs(t, err, repository.ErrSessionInvalid)

	require.NoError(t, sess.StoreRefresh(ctx, mk("r4", "h4", now.Add(time.Hour))))
	uid, err = sess.ConsumeRefresh(ctx, "h4")
	require.NoError(t, err)
	require.Equal(t, "alice", uid)
	_, err = sess.ConsumeRefresh(ctx, "h4")
	require.ErrorIs(t, err, repository.ErrSessionInvalid, "a token is consumed once")
	_, err = sess.ConsumeRefresh(ctx, "h3")
	require.ErrorIs(t, err, repository.ErrSessionInvalid, "expired")

	require.NoError(t, sess.RevokeAllForUser(ctx, "alice"))
	_, err = sess.ValidateRefresh(ctx, "h2")
	require.ErrorIs(t, err, repository.ErrSessionInvalid)
}

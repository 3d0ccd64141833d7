package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(u *fakeUsers) *UserService {
	return NewUserService(nil, &fakeRepoManager{users: u}, nil)
}

func TestRegister_CreatesUserWithHistory(t *testing.T) {
	u := newFakeUsers()
	svc := newUserService(u)

	resp, err := svc.Register(context.Background(), "owner-1", models.Registration{Email: " ann@example.com "})
	require.NoError(t, err)

	assert.Equal(t, common.CodeSuccess, resp.Outcome.Description)
	assert.Equal(t, "ann", resp.User.DisplayName)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, testNow, resp.User.RegisteredAt)
	assert.Equal(t, []string{"owner-1:USER_CREATED"}, u.history)
}

func TestRegister_KeepsGivenDisplayName(t *testing.T) {
	u := newFakeUsers()
	resp, err := newUserService(u).Register(context.Background(), "owner-1", models.Registration{DisplayName: "Ann B", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", resp.User.DisplayName)
}

func TestRegister_Rejections(t *testing.T) {
	u := newFakeUsers()
	u.users["taken"] = models.User{OwnerID: "taken", Email: "t@example.com"}
	svc := newUserService(u)

	tests := []struct {
		name  string
		owner string
		reg   models.Registration
		want  error
	}{
		{"anonymous", "", models.Registration{Email: "a@example.com"}, common.ErrorUnauthorized},
		{"missing email", "o", models.Registration{}, common.ErrValidation},
		{"bad email", "o", models.Registration{Email: "not-an-email"}, common.ErrValidation},
		{"already registered", "taken", models.Registration{Email: "t@example.com"}, common.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.owner, tt.reg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, u.history)
}

func TestRegister_StorageFailure(t *testing.T) {
	u := newFakeUsers()
	u.createErr = common.ErrDataAccess
	_, err := newUserService(u).Register(context.Background(), "o", models.Registration{Email: "a@example.com"})
	assert.ErrorIs(t, err, common.ErrDataAccess)
}

func TestGetUserInfo(t *testing.T) {
	u := newFakeUsers()
	u.users["o"] = models.User{ID: 7, OwnerID: "o", DisplayName: "Ann"}
	svc := newUserService(u)

	resp, err := svc.GetUserInfo(context.Background(), "o", "o")
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.User.ID)

	_, err = svc.GetUserInfo(context.Background(), "o", "someone-else")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.GetUserInfo(context.Background(), "ghost", "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = svc.GetUserInfo(context.Background(), "", "o")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	u := newFakeUsers()
	u.users["o"] = models.User{OwnerID: "o", DisplayName: "Ann", Email: "ann@example.com"}
	svc := newUserService(u)

	age := 30
	bio := "likes jazz"
	resp, err := svc.UpdateProfile(context.Background(), "o", "o", models.ProfileUpdate{Age: &age, Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, "Ann", resp.User.DisplayName)
	require.NotNil(t, resp.User.Age)
	assert.Equal(t, 30, *resp.User.Age)
	assert.Equal(t, []string{"o:PROFILE_UPDATED"}, u.history)
}

func TestUpdateProfile_Rejections(t *testing.T) {
	u := newFakeUsers()
	u.users["o"] = models.User{OwnerID: "o"}
	svc := newUserService(u)

	young := 5
	badURL := "not a url"
	badEmail := "nope"

	tests := []struct {
		name   string
		caller string
		owner  string
		p      models.ProfileUpdate
		want   error
	}{
		{"other account", "o", "x", models.ProfileUpdate{}, common.ErrForbidden},
		{"too young", "o", "o", models.ProfileUpdate{Age: &young}, common.ErrValidation},
		{"bad picture url", "o", "o", models.ProfileUpdate{ProfilePictureURL: &badURL}, common.ErrValidation},
		{"bad email", "o", "o", models.ProfileUpdate{Email: &badEmail}, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(context.Background(), tt.caller, tt.owner, tt.p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, u.history)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	_, err := newUserService(newFakeUsers()).UpdateProfile(context.Background(), "ghost", "ghost", models.ProfileUpdate{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

package auth_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockUserRepository struct {
	users map[string]struct {
		hash   string
		userID int64
	}
	byID map[int64]*auth.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: map[string]struct {
			hash   string
			userID int64
		}{},
		byID: map[int64]*auth.User{},
	}
}

func (m *mockUserRepository) addUser(id int64, email, password string, active bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
	m.users[email] = struct {
		hash   string
		userID int64
	}{hash: string(hash), userID: id}
	m.byID[id] = &auth.User{ID: id, Email: email, Name: "Test User", IsActive: active}
}

func (m *mockUserRepository) GetCredentialsByEmail(email string) (string, int64, error) {
	entry, ok := m.users[email]
	if !ok {
		return "", 0, errors.New("no such user")
	}
	return entry.hash, entry.userID, nil
}

func (m *mockUserRepository) GetUserWithRoles(userID int64) (*auth.User, error) {
	user, ok := m.byID[userID]
	if !ok {
		return nil, errors.New("no such user")
	}
	return user, nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *mockUserRepository
		service *auth.Service
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost)
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			repo.addUser(1, "csr@fbolaunchpad.com", "changeme123", true)
		})

		It("issues tokens for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "csr@fbolaunchpad.com", Password: "changeme123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
			Expect(claims.Email).To(Equal("csr@fbolaunchpad.com"))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "csr@fbolaunchpad.com", Password: "nope"})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown email the same way as a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "ghost@fbolaunchpad.com", Password: "changeme123"})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects an inactive account", func() {
			repo.addUser(2, "former@fbolaunchpad.com", "changeme123", false)

			_, err := service.Authenticate(auth.LoginDTO{Email: "former@fbolaunchpad.com", Password: "changeme123"})
			Expect(err).To(Equal(internal.ErrUserInactive))
		})

		It("rejects empty credentials before touching the store", func() {
			_, err := service.Authenticate(auth.LoginDTO{})
			var vErr auth.ValidationError
			Expect(errors.As(err, &vErr)).To(BeTrue())
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a refresh token for a new pair", func() {
			repo.addUser(1, "csr@fbolaunchpad.com", "changeme123", true)
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "csr@fbolaunchpad.com", Password: "changeme123"})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
		})

		It("rejects garbage input", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("rejects a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("some-other-secret", "another", 15*time.Minute, 7*24*time.Hour)
			token, err := otherGen.GenerateAccessToken("1", "csr@fbolaunchpad.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("rejects an expired token", func() {
			expiredGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
			token, err := expiredGen.GenerateAccessToken("1", "csr@fbolaunchpad.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(Equal(internal.ErrTokenExpired))
		})
	})

	Describe("HashPassword", func() {
		It("produces a hash that verifies against the original password", func() {
			hash, err := service.HashPassword("changeme123")
			Expect(err).NotTo(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("changeme123"))).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong"))).NotTo(Succeed())
		})
	})
})

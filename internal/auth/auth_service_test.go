package auth_test

import (
	"context"
	"testing"

	"go-tams/internal/auth"
	autherrors "go-tams/internal/auth/errors"
	"go-tams/internal/student"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type fakeAuthRepo struct {
	auth.Repository

	createFn     func(ctx context.Context, user *auth.User) error
	getByEmailFn func(ctx context.Context, email string) (*auth.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

func (f *fakeAuthRepo) Create(ctx context.Context, user *auth.User) error {
	return f.createFn(ctx, user)
}

func (f *fakeAuthRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return f.getByIDFn(ctx, id)
}

type fakeStudentRepo struct {
	student.Repository

	createFn func(ctx context.Context, st *student.Student) error
}

func (f *fakeStudentRepo) Create(ctx context.Context, st *student.Student) error {
	return f.createFn(ctx, st)
}

func hashPassword(t *testing.T, raw string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &fakeAuthRepo{}
		repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return &auth.User{
				ID:       uuid.New(),
				Email:    email,
				FullName: "Siti Rahma",
				Password: hashPassword(t, "secret123"),
				Role:     auth.RoleStudent,
			}, nil
		}
		svc := auth.NewService(repo, &fakeStudentRepo{})

		access, refresh, resp, err := svc.Login(ctx, "siti@campus.test", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, auth.RoleStudent, resp.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &fakeAuthRepo{}
		repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return &auth.User{
				ID:       uuid.New(),
				Email:    email,
				Password: hashPassword(t, "secret123"),
				Role:     auth.RoleStudent,
			}, nil
		}
		svc := auth.NewService(repo, &fakeStudentRepo{})

		_, _, _, err := svc.Login(ctx, "siti@campus.test", "wrong")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to same error", func(t *testing.T) {
		repo := &fakeAuthRepo{}
		repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return nil, autherrors.ErrUserNotFound
		}
		svc := auth.NewService(repo, &fakeStudentRepo{})

		_, _, _, err := svc.Login(ctx, "nobody@campus.test", "secret123")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("student registration creates profile", func(t *testing.T) {
		repo := &fakeAuthRepo{}
		repo.createFn = func(ctx context.Context, user *auth.User) error {
			assert.Equal(t, auth.RoleStudent, user.Role)
			assert.True(t, user.IsActive)
			assert.NotEqual(t, "secret123", user.Password)
			return nil
		}

		var createdProfile *student.Student
		students := &fakeStudentRepo{}
		students.createFn = func(ctx context.Context, st *student.Student) error {
			createdProfile = st
			return nil
		}
		svc := auth.NewService(repo, students)

		resp, err := svc.Register(ctx, auth.RegisterRequest{
			Email:         "budi@campus.test",
			FullName:      "Budi Santoso",
			Password:      "secret123",
			Role:          auth.RoleStudent,
			StudentNumber: "2021730012",
			Major:         "Informatics",
		})

		assert.NoError(t, err)
		assert.Equal(t, auth.RoleStudent, resp.Role)
		assert.NotNil(t, createdProfile)
		assert.Equal(t, "2021730012", createdProfile.StudentNumber)
		assert.Equal(t, resp.ID, createdProfile.UserID.String())
	})

	t.Run("faculty registration skips student profile", func(t *testing.T) {
		repo := &fakeAuthRepo{}
		repo.createFn = func(ctx context.Context, user *auth.User) error { return nil }

		students := &fakeStudentRepo{}
		students.createFn = func(ctx context.Context, st *student.Student) error {
			t.Fatal("student profile should not be created for faculty")
			return nil
		}
		svc := auth.NewService(repo, students)

		resp, err := svc.Register(ctx, auth.RegisterRequest{
			Email:    "dosen@campus.test",
			FullName: "Dr. Andi Wijaya",
			Password: "secret123",
			Role:     auth.RoleFaculty,
		})

		assert.NoError(t, err)
		assert.Equal(t, auth.RoleFaculty, resp.Role)
	})

	t.Run("admin role rejected", func(t *testing.T) {
		svc := auth.NewService(&fakeAuthRepo{}, &fakeStudentRepo{})

		_, err := svc.Register(ctx, auth.RegisterRequest{
			Email:    "root@campus.test",
			FullName: "Root",
			Password: "secret123",
			Role:     auth.RoleAdmin,
		})

		assert.ErrorIs(t, err, autherrors.ErrInvalidRole)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := &fakeAuthRepo{}
		repo.createFn = func(ctx context.Context, user *auth.User) error {
			return autherrors.ErrEmailTaken
		}
		svc := auth.NewService(repo, &fakeStudentRepo{})

		_, err := svc.Register(ctx, auth.RegisterRequest{
			Email:    "budi@campus.test",
			FullName: "Budi Santoso",
			Password: "secret123",
			Role:     auth.RoleStudent,
		})

		assert.ErrorIs(t, err, autherrors.ErrEmailTaken)
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package auth_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/authdir/authdir/internal/auth"
)

var _ = Describe("Directory with argon2id credentials", func() {
	var (
		ctx  context.Context
		dir  *auth.Directory
		sess *auth.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		dir, err = auth.NewDirectory(auth.Config{
			Validator: auth.NewDefaultValidator(),
			IDs:       auth.NewULIDGenerator(),
			Hasher:    auth.NewArgon2idHasherWithParams(1024, 1, 1),
		})
		Expect(err).NotTo(HaveOccurred())
		sess = dir.NewSession()
	})

	Describe("a member's lifecycle", func() {
		BeforeEach(func() {
			user, err := dir.Register(ctx, "Asha", "asha@x.com", "secret1", "MEMBER")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal(auth.RoleMember))
		})

		It("rejects the same email in another casing", func() {
			_, err := dir.Register(ctx, "Asha", "ASHA@X.COM", "secret1", "MEMBER")
			Expect(auth.ErrorCode(err)).To(Equal(auth.CodeEmailAlreadyRegistered))
		})

		It("logs in, edits the profile and stays out of admin listings", func() {
			_, err := sess.Login(ctx, "asha@x.com", "wrong")
			Expect(auth.ErrorCode(err)).To(Equal(auth.CodeIncorrectPassword))
			Expect(sess.IsLoggedIn()).To(BeFalse())

			_, err = sess.Login(ctx, "asha@x.com", "secret1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.IsLoggedIn()).To(BeTrue())

			Expect(sess.UpdateProfile(ctx, "Coimbatore", "9876543210")).To(Succeed())
			err = sess.UpdateProfile(ctx, "Coimbatore", "12345")
			Expect(auth.ErrorCode(err)).To(Equal(auth.CodeInvalidContact))

			current, ok := sess.CurrentUser()
			Expect(ok).To(BeTrue())
			Expect(current.Area).To(Equal("Coimbatore"))
			Expect(current.Contact).To(Equal("9876543210"))

			_, err = sess.Users(ctx)
			Expect(auth.ErrorCode(err)).To(Equal(auth.CodeAccessDenied))
		})

		It("treats logout without a session as a no-op", func() {
			sess.Logout(ctx)
			sess.Logout(ctx)
			Expect(sess.IsLoggedIn()).To(BeFalse())
		})
	})

	Describe("the administrator", func() {
		It("is unique and may list everyone", func() {
			_, err := dir.Register(ctx, "Impostor", "boss@x.com", "secret1", "ADMIN")
			Expect(auth.ErrorCode(err)).To(Equal(auth.CodeInvalidAdminEmail))
			Expect(dir.IsAdminRegistered()).To(BeFalse())

			_, err = dir.Register(ctx, "Boss", dir.AdminEmail(), "secret1", "ADMIN")
			Expect(err).NotTo(HaveOccurred())
			Expect(dir.IsAdminRegistered()).To(BeTrue())

			_, err = dir.Register(ctx, "Second", "second@x.com", "secret1", "ADMIN")
			Expect(auth.ErrorCode(err)).To(Equal(auth.CodeAdminAlreadyRegistered))

			_, err = dir.Register(ctx, "Asha", "asha@x.com", "secret1", "MEMBER")
			Expect(err).NotTo(HaveOccurred())

			_, err = sess.Login(ctx, dir.AdminEmail(), "secret1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.IsCurrentUserAdmin()).To(BeTrue())

			users, err := sess.Users(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
		})
	})
})

package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akash-tk/contactflix/internal/sdk/middleware"
	"github.com/akash-tk/contactflix/internal/sdk/models"
	"github.com/akash-tk/contactflix/internal/sdk/sqldb"
	"github.com/akash-tk/contactflix/internal/services/sentry"
)

// HandleRegister creates an account from a multipart form (profile
// picture optional) and returns a signed token with the new user.
func (a *App) HandleRegister(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		if err := c.Request.ParseForm(); err != nil {
			a.toSentry(c, "register", "parse_form", sentry.LevelError, err)
			writeError(c, ErrUnmarshal, nil)
			return
		}
	}

	upload, rejection := screenProfilePicture(c)
	if rejection != "" {
		writeError(c, rejection, nil)
		return
	}

	phones, _ := formPhoneNumbers(c)
	in := registerInput{
		FirstName:       strings.TrimSpace(c.PostForm("firstName")),
		LastName:        strings.TrimSpace(c.PostForm("lastName")),
		Email:           strings.TrimSpace(c.PostForm("email")),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
		DateOfBirth:     strings.TrimSpace(c.PostForm("dateOfBirth")),
		Gender:          strings.TrimSpace(c.PostForm("gender")),
		Address:         strings.TrimSpace(c.PostForm("address")),
		PhoneNumbers:    phones,
	}

	if msg := validateRegisterInput(in); msg != "" {
		writeBadRequest(c, msg)
		return
	}

	digest, err := a.hash.HashPassword(in.Password)
	if err != nil {
		a.toSentry(c, "register", "hash", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	var profilePicture *string
	if upload != nil {
		objectName, err := a.storeUpload(c.Request.Context(), upload)
		if err != nil {
			a.toSentry(c, "register", "storage", sentry.LevelError, err)
			writeError(c, ErrServer, nil)
			return
		}
		profilePicture = &objectName
	}

	user, err := a.db.CreateUser(c.Request.Context(), models.NewUser{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Password:       digest,
		DateOfBirth:    in.DateOfBirth,
		Gender:         in.Gender,
		PhoneNumbers:   in.PhoneNumbers,
		Address:        in.Address,
		ProfilePicture: profilePicture,
	})
	if err != nil {
		if profilePicture != nil {
			a.removeStoredImage(c, "register", *profilePicture)
		}
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			writeBadRequest(c, emailExistsMsg(in.Email))
			return
		}
		a.toSentry(c, "register", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	token, err := a.jwt.GenerateToken(c.Request.Context(), user.ID)
	if err != nil {
		a.toSentry(c, "register", "jwt", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	user.Password = nil
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// HandleLogin exchanges email+password for a signed token.
func (a *App) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "login", "unmarshal", sentry.LevelError, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(c, ErrMissingFields, nil)
		return
	}
	if !emailRegex.MatchString(req.Email) {
		writeError(c, ErrInvalidEmail, nil)
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrInvalidCredentials, nil)
			return
		}
		a.toSentry(c, "login", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	// Same error for unknown email and wrong password to avoid account
	// enumeration.
	if !a.hash.CheckPassword(req.Password, user.Password) {
		writeError(c, ErrInvalidCredentials, nil)
		return
	}

	token, err := a.jwt.GenerateToken(c.Request.Context(), user.ID)
	if err != nil {
		a.toSentry(c, "login", "jwt", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	user.Password = nil
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// HandleMe returns the identity resolved by the auth gate.
func (a *App) HandleMe(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	c.JSON(http.StatusOK, user)
}

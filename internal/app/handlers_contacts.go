package app

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akash-tk/contactflix/internal/sdk/middleware"
	"github.com/akash-tk/contactflix/internal/sdk/models"
	"github.com/akash-tk/contactflix/internal/sdk/sqldb"
	"github.com/akash-tk/contactflix/internal/services/sentry"
)

const defaultPageLimit = 4

// HandleCreateContact creates a contact owned by the caller. Validation
// runs in order: upload screening, field patterns, then the per-owner
// phone uniqueness check; nothing is written until all of it passes.
func (a *App) HandleCreateContact(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		if err := c.Request.ParseForm(); err != nil {
			a.toSentry(c, "create_contact", "parse_form", sentry.LevelError, err)
			writeError(c, ErrUnmarshal, nil)
			return
		}
	}

	upload, rejection := screenProfilePicture(c)
	if rejection != "" {
		writeError(c, rejection, nil)
		return
	}

	firstName := strings.TrimSpace(c.PostForm("firstName"))
	lastName := strings.TrimSpace(c.PostForm("lastName"))
	address, _ := optionalFormField(c, "address")
	company, _ := optionalFormField(c, "company")
	phones, _ := formPhoneNumbers(c)

	if msg := validateContactInput(firstName, lastName, phones); msg != "" {
		writeBadRequest(c, msg)
		return
	}

	taken, err := a.db.FindTakenPhones(c.Request.Context(), user.ID, phones, "")
	if err != nil {
		a.toSentry(c, "create_contact", "db_phones", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}
	if phone := firstTaken(phones, taken); phone != "" {
		writeBadRequest(c, phoneExistsMsg(phone))
		return
	}

	var profilePicture *string
	if upload != nil {
		objectName, err := a.storeUpload(c.Request.Context(), upload)
		if err != nil {
			a.toSentry(c, "create_contact", "storage", sentry.LevelError, err)
			writeError(c, ErrServer, nil)
			return
		}
		profilePicture = &objectName
	}

	contact, err := a.db.CreateContact(c.Request.Context(), models.NewContact{
		UserID:         user.ID,
		FirstName:      firstName,
		LastName:       lastName,
		Address:        address,
		Company:        company,
		PhoneNumbers:   phones,
		ProfilePicture: profilePicture,
	})
	if err != nil {
		if profilePicture != nil {
			a.removeStoredImage(c, "create_contact", *profilePicture)
		}
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			// Lost the race against a concurrent write; the unique index
			// is authoritative, the pre-check just names the number.
			a.writePhoneConflict(c, user.ID, phones, "")
			return
		}
		a.toSentry(c, "create_contact", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// HandleListContacts returns one page of the caller's contacts, newest
// first, optionally narrowed by a free-text search.
func (a *App) HandleListContacts(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	page, limit := pagination(c)
	search := strings.TrimSpace(c.Query("search"))

	contacts, total, err := a.db.ListContacts(c.Request.Context(), user.ID, models.ContactQuery{
		Search: search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		a.toSentry(c, "list_contacts", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	c.JSON(http.StatusOK, contactPage(contacts, total, page, limit))
}

// HandleGetContact fetches a single contact by id. Reads are not
// owner-scoped: any authenticated caller may fetch any contact, while
// update and delete below do enforce ownership.
func (a *App) HandleGetContact(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, ErrInvalidID, nil)
		return
	}

	contact, err := a.db.GetContactByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "get_contact", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// HandleUpdateContact applies a partial update to a contact the caller
// owns. Submitted fields are validated and compared against stored
// values; an update that changes nothing is rejected.
func (a *App) HandleUpdateContact(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		if err := c.Request.ParseForm(); err != nil {
			a.toSentry(c, "update_contact", "parse_form", sentry.LevelError, err)
			writeError(c, ErrUnmarshal, nil)
			return
		}
	}

	upload, rejection := screenProfilePicture(c)
	if rejection != "" {
		writeError(c, rejection, nil)
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, ErrInvalidID, nil)
		return
	}

	contact, err := a.db.GetContactByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "update_contact", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	if contact.UserID != user.ID {
		writeError(c, ErrEditNotOwner, nil)
		return
	}

	updated := contact
	changed := false

	if v, submitted := c.GetPostForm("firstName"); submitted {
		v = strings.TrimSpace(v)
		if !nameRegex.MatchString(v) {
			writeError(c, ErrInvalidFirstName, nil)
			return
		}
		changed = changed || v != contact.FirstName
		updated.FirstName = v
	}
	if v, submitted := c.GetPostForm("lastName"); submitted {
		v = strings.TrimSpace(v)
		if !nameRegex.MatchString(v) {
			writeError(c, ErrInvalidLastName, nil)
			return
		}
		changed = changed || v != contact.LastName
		updated.LastName = v
	}
	if v, submitted := optionalFormField(c, "address"); submitted {
		changed = changed || !strPtrEqual(v, contact.Address)
		updated.Address = v
	}
	if v, submitted := optionalFormField(c, "company"); submitted {
		changed = changed || !strPtrEqual(v, contact.Company)
		updated.Company = v
	}

	if phones, submitted := formPhoneNumbers(c); submitted {
		if len(phones) == 0 {
			writeError(c, ErrPhoneListEmpty, nil)
			return
		}
		if msg := validatePhoneNumbers(phones); msg != "" {
			writeBadRequest(c, msg)
			return
		}

		taken, err := a.db.FindTakenPhones(c.Request.Context(), user.ID, phones, id)
		if err != nil {
			a.toSentry(c, "update_contact", "db_phones", sentry.LevelError, err)
			writeError(c, ErrServer, nil)
			return
		}
		if phone := firstTaken(phones, taken); phone != "" {
			writeBadRequest(c, phoneExistsMsg(phone))
			return
		}

		changed = changed || !slices.Equal(phones, contact.PhoneNumbers)
		updated.PhoneNumbers = phones
	}

	// A replacement image always counts as a change; without one the
	// stored picture is left untouched.
	changed = changed || upload != nil

	if !changed {
		writeError(c, ErrNoChanges, nil)
		return
	}

	previousPicture := contact.ProfilePicture
	if upload != nil {
		objectName, err := a.storeUpload(c.Request.Context(), upload)
		if err != nil {
			a.toSentry(c, "update_contact", "storage", sentry.LevelError, err)
			writeError(c, ErrServer, nil)
			return
		}
		updated.ProfilePicture = &objectName
	}

	result, err := a.db.UpdateContact(c.Request.Context(), updated)
	if err != nil {
		if upload != nil && updated.ProfilePicture != nil {
			a.removeStoredImage(c, "update_contact", *updated.ProfilePicture)
		}
		switch {
		case errors.Is(err, sqldb.ErrDBDuplicatedEntry):
			a.writePhoneConflict(c, user.ID, updated.PhoneNumbers, id)
		case errors.Is(err, sqldb.ErrDBNotFound):
			writeError(c, ErrContactNotFound, nil)
		default:
			a.toSentry(c, "update_contact", "db", sentry.LevelError, err)
			writeError(c, ErrServer, nil)
		}
		return
	}

	// The replaced image is gone from the record; removing the object is
	// best effort.
	if upload != nil && previousPicture != nil {
		a.removeStoredImage(c, "update_contact", *previousPicture)
	}

	c.JSON(http.StatusOK, result)
}

// HandleDeleteContact removes a contact the caller owns and responds
// with the caller's refreshed page so the client can re-render in one
// round trip.
func (a *App) HandleDeleteContact(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, ErrInvalidID, nil)
		return
	}

	contact, err := a.db.GetContactByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "delete_contact", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	if contact.UserID != user.ID {
		writeError(c, ErrDeleteNotOwner, nil)
		return
	}

	// Best-effort image removal: a storage hiccup must not block the
	// record deletion.
	if contact.ProfilePicture != nil {
		a.removeStoredImage(c, "delete_contact", *contact.ProfilePicture)
	}

	if err := a.db.DeleteContact(c.Request.Context(), id); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "delete_contact", "db", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	page, limit := pagination(c)
	contacts, total, err := a.db.ListContacts(c.Request.Context(), user.ID, models.ContactQuery{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		a.toSentry(c, "delete_contact", "db_list", sentry.LevelError, err)
		writeError(c, ErrServer, nil)
		return
	}

	c.JSON(http.StatusOK, contactPage(contacts, total, page, limit))
}

// writePhoneConflict reports a phone-uniqueness conflict, naming the
// offending number when it can still be determined.
func (a *App) writePhoneConflict(c *gin.Context, ownerID string, phones []string, excludeID string) {
	taken, err := a.db.FindTakenPhones(c.Request.Context(), ownerID, phones, excludeID)
	if err == nil {
		if phone := firstTaken(phones, taken); phone != "" {
			writeBadRequest(c, phoneExistsMsg(phone))
			return
		}
	}
	writeBadRequest(c, "Phone number already exists")
}

// firstTaken returns the first submitted phone that appears in the taken
// set, preserving input order for the error message.
func firstTaken(phones, taken []string) string {
	if len(taken) == 0 {
		return ""
	}
	takenSet := make(map[string]bool, len(taken))
	for _, p := range taken {
		takenSet[p] = true
	}
	for _, p := range phones {
		if takenSet[p] {
			return p
		}
	}
	return ""
}

func pagination(c *gin.Context) (page, limit int) {
	page = queryInt(c, "page", 1)
	limit = queryInt(c, "limit", defaultPageLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	return page, limit
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func contactPage(contacts []models.Contact, total, page, limit int) ContactPageResponse {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return ContactPageResponse{
		Contacts:      contacts,
		TotalContacts: total,
		TotalPages:    (total + limit - 1) / limit,
		CurrentPage:   page,
	}
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

package validator

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const (
	MaxBio             = 500
	MaxTitle           = 200
	MaxLocation        = 200
	MaxTags            = 200
	MaxComment         = 1000
	MaxParticipants    = 1000
	maxSkillListLength = 500
)

func ValidateRegister(name, email, password, bio string) ValidationErrors {
	errs := make(ValidationErrors)

	validateName(name, errs)
	validateEmail(email, errs)
	validatePassword(password, errs)
	validateBio(bio, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateProfile checks a partial profile update. Nil fields are left
// unchanged and are not validated.
func ValidateProfile(name, email, bio, skillsOffering, skillsSeeking *string) ValidationErrors {
	errs := make(ValidationErrors)

	if name != nil {
		validateName(*name, errs)
	}
	if email != nil {
		validateEmail(*email, errs)
	}
	if bio != nil {
		validateBio(*bio, errs)
	}

	if skillsOffering != nil && utf8.RuneCountInString(*skillsOffering) > maxSkillListLength {
		errs.Add("skills_offering", "Skills list is too long")
	}
	if skillsSeeking != nil && utf8.RuneCountInString(*skillsSeeking) > maxSkillListLength {
		errs.Add("skills_seeking", "Skills list is too long")
	}

	return errs
}

func ValidateResetRequest(email string) ValidationErrors {
	errs := make(ValidationErrors)
	validateEmail(email, errs)
	return errs
}

func ValidateResetConfirm(token, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(token) == "" {
		errs.Add("token", "Token is required")
	}
	validatePassword(password, errs)

	return errs
}

func ValidateWorkshop(title, description, category string, maxParticipants int, dateTime time.Time, location string, categories []string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if utf8.RuneCountInString(title) > MaxTitle {
		errs.Add("title", "Title is too long")
	}

	if strings.TrimSpace(description) == "" {
		errs.Add("description", "Description is required")
	}

	validateCategory(category, categories, errs)

	if maxParticipants < 1 {
		errs.Add("max_participants", "At least one participant is required")
	} else if maxParticipants > MaxParticipants {
		errs.Add("max_participants", fmt.Sprintf("At most %d participants are allowed", MaxParticipants))
	}

	if dateTime.IsZero() {
		errs.Add("date_time", "Date and time are required")
	}

	location = strings.TrimSpace(location)
	if location == "" {
		errs.Add("location", "Location is required")
	} else if utf8.RuneCountInString(location) > MaxLocation {
		errs.Add("location", "Location is too long")
	}

	return errs
}

func ValidateArticle(title, content, category, tags string, categories []string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if utf8.RuneCountInString(title) > MaxTitle {
		errs.Add("title", "Title is too long")
	}

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "Content is required")
	}

	validateCategory(category, categories, errs)

	if utf8.RuneCountInString(tags) > MaxTags {
		errs.Add("tags", "Tags are too long")
	}

	return errs
}

func ValidateComment(content string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(content) == "" {
		errs.Add("content", "Comment cannot be empty")
	} else if utf8.RuneCountInString(content) > MaxComment {
		errs.Add("content", fmt.Sprintf("Comment must be at most %d characters", MaxComment))
	}

	return errs
}

func validateName(name string, errs ValidationErrors) {
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if utf8.RuneCountInString(name) < 2 {
		errs.Add("name", "Name must be at least 2 characters")
	} else if utf8.RuneCountInString(name) > 100 {
		errs.Add("name", "Name is too long")
	}
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validateBio(bio string, errs ValidationErrors) {
	if utf8.RuneCountInString(bio) > MaxBio {
		errs.Add("bio", fmt.Sprintf("Bio must be at most %d characters", MaxBio))
	}
}

func validateCategory(category string, allowed []string, errs ValidationErrors) {
	if category == "" {
		errs.Add("category", "Category is required")
	} else if !slices.Contains(allowed, category) {
		errs.Add("category", "Category must be one of: "+strings.Join(allowed, ", "))
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}

package validator

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

var (
	ErrInvalidAccountID   = errors.New("invalid account id")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidSecret      = errors.New("invalid secret")
	ErrInvalidBio         = errors.New("bio too long")
	ErrInvalidTitle       = errors.New("invalid title")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidImages      = errors.New("too many images")
	ErrInvalidCode        = errors.New("invalid campaign code")
)

const (
	maxBio         = 1024
	maxTitle       = 200
	maxDescription = 10000
	maxImages      = 20
	maxImageURL    = 2048
)

var (
	accountIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-.]{1,63}$`)
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	codeRegex      = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)
)

func ValidateAccountID(id string) error {
	if !accountIDRegex.MatchString(id) {
		return ErrInvalidAccountID
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidateSecret(secret string) error {
	if len(secret) < 8 || len(secret) > 72 {
		return ErrInvalidSecret
	}
	return nil
}

func ValidateBio(bio *string) error {
	if bio != nil && utf8.RuneCountInString(*bio) > maxBio {
		return ErrInvalidBio
	}
	return nil
}

// ValidateCampaign checks the immutable descriptive fields of a campaign.
func ValidateCampaign(title, description, code string, images []string) error {
	if n := utf8.RuneCountInString(title); n == 0 || n > maxTitle {
		return ErrInvalidTitle
	}
	if utf8.RuneCountInString(description) > maxDescription {
		return ErrInvalidDescription
	}
	if !codeRegex.MatchString(code) {
		return ErrInvalidCode
	}
	if len(images) > maxImages {
		return ErrInvalidImages
	}
	for _, image := range images {
		if image == "" || len(image) > maxImageURL {
			return ErrInvalidImages
		}
	}
	return nil
}

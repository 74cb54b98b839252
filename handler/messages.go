package handler

import (
	"errors"
	"fmt"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
	"github.com/matiin1402/InternalLinkBot/internal/usecase"
)

// Messages is the user-facing text catalogue. Fields ending in Format take
// one %s argument.
type Messages struct {
	Menu                     string
	SelectedFormat           string
	SelectFirst              string
	Working                  string
	Cancelled                string
	UnknownCommand           string
	ProjectNotFound          string
	InvalidTitle             string
	SitemapUnreachableFormat string
	SitemapMalformed         string
	SitemapEmpty             string
	AIService                string
	UnexpectedFormat         string
}

// DefaultMessages is the Persian catalogue.
func DefaultMessages() Messages {
	return Messages{
		Menu:                     "سلام! لطفاً یک پروژه را برای تحلیل انتخاب کنید:",
		SelectedFormat:           "پروژه انتخاب شده: %s\n\nحالا عنوان مقاله یا کلمه کلیدی اصلی خود را وارد کنید:",
		SelectFirst:              "لطفاً ابتدا با ارسال دستور /start یک پروژه را انتخاب کنید.",
		Working:                  "در حال بررسی سایت‌مپ و تحلیل ارتباط معنایی... لطفاً کمی صبر کنید ⌛️",
		Cancelled:                "انتخاب پروژه لغو شد. برای شروع دوباره /start را بفرستید.",
		UnknownCommand:           "این دستور شناخته نشد. برای شروع /start را بفرستید.",
		ProjectNotFound:          "پروژه انتخاب شده پیدا نشد. لطفاً با /start دوباره انتخاب کنید.",
		InvalidTitle:             "عنوان مقاله خالی است یا بیش از حد طولانی است.",
		SitemapUnreachableFormat: "خطا در دسترسی به سایت‌مپ: %s",
		SitemapMalformed:         "فرمت سایت‌مپ پشتیبانی نمی‌شود.",
		SitemapEmpty:             "هیچ لینکی در سایت‌مپ پیدا نشد.",
		AIService:                "سرویس هوش مصنوعی پاسخ نداد. لطفاً دوباره تلاش کنید.",
		UnexpectedFormat:         "یک خطای غیرمنتظره رخ داد: %s",
	}
}

// ForError maps a pipeline or session error to the reply shown to the user.
func (m Messages) ForError(err error) string {
	var ue *usecase.Error
	if errors.As(err, &ue) {
		switch ue.Code {
		case usecase.ErrorProjectNotFound:
			return m.ProjectNotFound
		case usecase.ErrorNoSelection:
			return m.SelectFirst
		case usecase.ErrorInvalidTitle:
			return m.InvalidTitle
		case usecase.ErrorSitemapUnreachable:
			return fmt.Sprintf(m.SitemapUnreachableFormat, cause(ue))
		case usecase.ErrorSitemapMalformed:
			return m.SitemapMalformed
		case usecase.ErrorSitemapEmpty:
			return m.SitemapEmpty
		case usecase.ErrorAIService:
			return m.AIService
		default:
			return fmt.Sprintf(m.UnexpectedFormat, cause(ue))
		}
	}
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		return m.ProjectNotFound
	case errors.Is(err, domain.ErrNoSelection):
		return m.SelectFirst
	}
	return fmt.Sprintf(m.UnexpectedFormat, err)
}

func cause(ue *usecase.Error) string {
	if ue.Err != nil {
		return ue.Err.Error()
	}
	return ue.Reason
}

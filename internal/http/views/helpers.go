package views

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

func FormatInt(v int) string {
	return strconv.Itoa(v)
}

func FormatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ModerationURL builds the dashboard URL for the given page of each list.
func ModerationURL(pendingPage, reportsPage int) string {
	values := url.Values{}
	if pendingPage > 1 {
		values.Set("pending_page", strconv.Itoa(pendingPage))
	}
	if reportsPage > 1 {
		values.Set("reports_page", strconv.Itoa(reportsPage))
	}
	if len(values) == 0 {
		return "/moderation"
	}
	return "/moderation?" + values.Encode()
}

func AuditURL(page int) string {
	if page > 1 {
		return "/audit?page=" + strconv.Itoa(page)
	}
	return "/audit"
}

// HumanizeKey turns a snake_case backend key into a label.
func HumanizeKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if key == "" {
		return ""
	}
	runes := []rune(key)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func HumanizeAction(action string) string {
	switch strings.TrimSpace(action) {
	case "approve_gig":
		return "Approve gig"
	case "block_user":
		return "Block user"
	case "delete_review":
		return "Delete review"
	default:
		return HumanizeKey(action)
	}
}

func OutcomeBadgeClass(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "success":
		return "badge badge-success"
	case "failure":
		return "badge badge-danger"
	default:
		return "badge"
	}
}

func ToastClass(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "success", "error", "warning":
		return "toast toast-" + strings.ToLower(strings.TrimSpace(category))
	default:
		return "toast toast-info"
	}
}

func EmptyDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

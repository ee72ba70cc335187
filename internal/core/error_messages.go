// Package core provides the business logic for filling document templates
// from spreadsheet data.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Operators can quote the code when asking for help.
//
// # Input Errors (SHEET001-SHEET099, DOC001-DOC099, ORD001-ORD099)
//
//	SHEET001 - Empty sheet: The spreadsheet has no data rows
//	           Action: Add at least one row below the header row
//	           Matched by: *EmptyInputError
//
//	DOC001   - Marker not found: The insertion marker is not in the template
//	           Action: Type the marker text in the template body, or disable the list block
//	           Matched by: *MarkerNotFoundError
//
//	ORD001   - No order column: No column can be used to sort the records
//	           Action: Choose the order column explicitly
//	           Matched by: *NoOrderableColumnError
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum size limit
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Unreadable spreadsheet: The spreadsheet could not be read
//	          Matched by: *DecodeError with Source "sheet"
//
//	FILE003 - Unreadable template: The template is not a valid DOCX file
//	          Matched by: *DecodeError with Source "document"
//
//	FILE004 - No file: A required file was not selected
//	          Patterns: "no file provided"
//
// # Generation Errors (GEN001-GEN099)
//
//	GEN001 - System busy: Too many generations in progress
//	         Matched by: ErrTooManyGenerations
//
//	GEN002 - Request cancelled
//	         Patterns: "context canceled"
//
//	GEN003 - Request timeout
//	         Patterns: "context deadline exceeded"
//
//	GEN004 - Invalid options: A generation option is out of range
//	         Patterns: "invalid option"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the server log for the technical error.
//
// # Matching
//
// Typed errors are matched first with errors.As / errors.Is, so wrapping with
// %w keeps the mapping intact. String patterns are matched case-insensitively
// with strings.Contains; the first matching pattern wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgEmptySheet = UserMessage{
		Message: "The spreadsheet has no data rows",
		Action:  "Add at least one row below the header row",
		Code:    "SHEET001",
	}
	msgMarkerNotFound = UserMessage{
		Message: "The insertion marker was not found in the template",
		Action:  "Type the marker text in the template body, or disable the list block",
		Code:    "DOC001",
	}
	msgNoOrderColumn = UserMessage{
		Message: "No column can be used to sort the records",
		Action:  "Choose the order column explicitly",
		Code:    "ORD001",
	}
	msgBadSheet = UserMessage{
		Message: "The spreadsheet could not be read",
		Action:  "Save it as .xlsx or UTF-8 .csv and upload again",
		Code:    "FILE002",
	}
	msgBadTemplate = UserMessage{
		Message: "The template is not a valid DOCX file",
		Action:  "Save the template as Word (.docx) and upload again",
		Code:    "FILE003",
	}
	msgBusy = UserMessage{
		Message: "Too many documents are being generated",
		Action:  "Please wait a moment and try again",
		Code:    "GEN001",
	}
)

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Remove images or unused sheets and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Remove images or unused sheets and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "A required file was not selected",
			Action:  "Select both the template and the spreadsheet",
			Code:    "FILE004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "GEN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller spreadsheet or try again later",
			Code:    "GEN003",
		},
	},
	{
		pattern: "invalid option",
		msg: UserMessage{
			Message: "A generation option is invalid",
			Action:  "Check the spacing and column options",
			Code:    "GEN004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		empty  *EmptyInputError
		marker *MarkerNotFoundError
		order  *NoOrderableColumnError
		decode *DecodeError
	)
	switch {
	case errors.As(err, &empty):
		return msgEmptySheet
	case errors.As(err, &marker):
		msg := msgMarkerNotFound
		msg.Message = fmt.Sprintf("%s: %q", msg.Message, marker.Marker)
		if marker.Scope == ScopeAll {
			msg.Action = "Type the marker text anywhere in the template, or disable the list block"
		}
		return msg
	case errors.As(err, &order):
		msg := msgNoOrderColumn
		if order.Column != "" {
			msg.Message = fmt.Sprintf("Order column %q does not exist in the spreadsheet", order.Column)
		}
		return msg
	case errors.As(err, &decode):
		if decode.Source == "document" {
			return msgBadTemplate
		}
		return msgBadSheet
	case errors.Is(err, ErrTooManyGenerations):
		return msgBusy
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

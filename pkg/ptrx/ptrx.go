// Package ptrx provides pointer helpers for optional struct fields.
package ptrx

import "time"

// String returns a pointer to the string value passed in.
func String(v string) *string {
	return &v
}

// Bool returns a pointer to the bool value passed in.
func Bool(v bool) *bool {
	return &v
}

// Int returns a pointer to the int value passed in.
func Int(v int) *int {
	return &v
}

// Int64 returns a pointer to the int64 value passed in.
func Int64(v int64) *int64 {
	return &v
}

// Time returns a pointer to the time.Time value passed in.
func Time(v time.Time) *time.Time {
	return &v
}

// StringValue returns the value of the string pointer, or "" when nil.
func StringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// TimeValue returns the value of the time pointer, or the zero time when nil.
func TimeValue(v *time.Time) time.Time {
	if v == nil {
		return time.Time{}
	}
	return *v
}

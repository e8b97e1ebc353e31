// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strconv"

// IntToStr converts an int to its decimal string form.
func IntToStr(i int) string {
	return strconv.Itoa(i)
}

// Int64ToStr converts an int64 to its decimal string form.
func Int64ToStr(i int64) string {
	return strconv.FormatInt(i, 10)
}

// FloatToStr formats a float with the given number of decimal places.
func FloatToStr(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

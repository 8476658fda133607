// Package ir provides the shared value types for quadra.
//
// This package contains type definitions and their canonical encodings only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the request/result model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Non-finite floats (NaN, +Inf, -Inf) are legal sample and integral
//     values and always encode as the JSON strings "NaN", "+Inf", "-Inf"
//   - Finite floats encode with the shortest representation that round-trips
//   - All JSON tags use snake_case
//   - Content-addressed IDs use canonical JSON (sorted keys, NFC strings)
package ir

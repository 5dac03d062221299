// Package model defines shared data types used across the desk client.
//
// Conventions:
//   - Quantities and prices: decimal.Decimal (exact arithmetic, no float drift)
//   - Calendar dates: "YYYY-MM-DD" strings, parsed component-wise
//   - Chart timestamps: int64 milliseconds since Unix epoch, UTC midnight
package model

// Package fieldsync keeps a form's price input in step with its product
// selector. Each change of the selector issues one price lookup; a
// successful response is written into the price input and a failed one
// leaves it untouched.
//
// Overlapping lookups are not ordered by default: whichever response
// resolves last wins. WithCancelSuperseded changes that so only the most
// recent selection can write.
package fieldsync

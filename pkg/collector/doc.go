// Package collector accumulates custom emoji found on a rendered chat page.
//
// A Scanner walks the candidate elements of a Page, extracts the emoji id,
// display name and origin server of every element it has not seen before and
// registers them in a State. State is additive: records are never removed or
// changed, and each id is registered at most once.
//
// The page is reached only through the Page and Element interfaces, so the
// same scanner runs against a live browser tab, a saved HTML snapshot or an
// in-memory fake.
package collector

// Package mongodb provides MongoDB implementations of the store interfaces.
//
// Food listings are stored as flat documents in the "foods" collection: the
// donor's attributes sit next to the system fields, which is also the shape
// the API returns. Donation requests live in "requests", where a unique index
// on (food_id, user_email) rejects duplicate requests. MongoDB has no
// cross-collection transaction on standalone servers, so decisions are
// applied by service.SagaDecider over these stores.
package mongodb

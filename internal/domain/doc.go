// Package domain contains the core business entities of the food-donation
// marketplace: food listings, donation requests and the verified principal
// acting on them. It is independent of any storage or delivery mechanism.
package domain

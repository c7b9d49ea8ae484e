// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. Service Interfaces:
//   - FoodService manages donation listings on behalf of donors and the public
//   - RequestService manages requests and the donor's accept/reject decision
//
// 2. Authorization:
//   - Services receive the verified domain.Principal explicitly and apply the
//     rules in internal/authz before touching a resource
//
// 3. Consistency:
//   - Decisions are applied through a store.Decider; SagaDecider implements it
//     with compensation for stores without multi-document transactions
//
// 4. Error Handling:
//   - Expected conditions are returned as sentinel errors (service, store, authz)
//   - Unexpected failures are wrapped in ServiceError
package service

// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// CirculationService carries the cross-entity circulation rules (search,
// borrow, return, overdue scanning, fine posting, reminders) and is the only
// place those rules live. MembershipService manages member and librarian
// accounts and their credentials. Both receive their dependencies through
// constructor injection and depend only on the store interfaces, never on a
// specific persistence implementation.
package service

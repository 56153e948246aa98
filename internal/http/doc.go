// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","principal":{"user_id","role"}} with the
//     token also surfaced via the `X-Session-Token` header and an encoded
//     `pracosfera_session` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - GET /reservations, POST /reservations, GET /reservations/{id}: role
//     scoped reservation access exchanging the `reservationDTO` payload
//     defined in reservation_handler.go. Listing accepts `status`, `from` and
//     `to` query parameters.
//   - GET /reservations/open: the unassigned reservations fitting the calling
//     worker's configured shifts.
//   - POST /reservations/{id}/accept|assign|cancel: reservation transitions.
//     Losing a claim race returns 409.
//   - GET /workers/{id}/shifts, PUT /workers/{id}/shifts,
//     DELETE /workers/{id}/shifts/{date}: shift roster endpoints exchanging
//     the `shiftDTO` payload defined in shift_handler.go. Writes require the
//     admin role.
//   - GET /users, POST /users, GET/PUT/DELETE /users/{id}: administrator
//     controlled account management exchanging the `userDTO` payload defined
//     in user_handler.go.
//   - GET /reports/reservations.xlsx: administrator spreadsheet export of
//     reservations, honoring the same query parameters as GET /reservations.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

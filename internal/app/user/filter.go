package user

import "strings"

// Filter returns, in order, the users whose name or email contains query,
// ignoring case. An empty query keeps everyone. The input is never modified.
func Filter(users []User, query string) []User {
	out := make([]User, 0, len(users))

	q := strings.ToLower(query)
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}

	return out
}

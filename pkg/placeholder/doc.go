// Package placeholder rewrites numbered bind parameters ($1, $2, ...) in a
// query literal to a static positional marker such as "?".
//
// Positional markers bind parameters strictly left to right, so a literal
// can only be remapped safely when its ordinals read 1, 2, ... N in order.
// Anything else is reported as an Issue and left for a human to resolve.
package placeholder

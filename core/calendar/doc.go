// Package calendar maps simulation timestep indices to the season, day type
// and time-of-day bucket that drive arrival probabilities. The mapping is a
// pure function of the index; no wall-clock time is involved.
package calendar

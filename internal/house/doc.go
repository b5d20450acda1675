// Package house is the directory of houses and their optional location.
//
// Weather lookups use the first house's coordinates; a house without a
// location cannot be used for them.
package house

// Package viz renders simulation output in the terminal: ASCII scatter
// plots for Poincaré return maps and bifurcation diagrams, and a
// bubbletea live view with rolling entropy and mean-oxidation graphs.
package viz

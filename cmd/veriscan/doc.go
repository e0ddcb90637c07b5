// Command veriscan is the operator CLI for the veriscan daemon.
package main

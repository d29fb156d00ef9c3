//go:build !unix

package fsx

func isNoSpace(error) bool { return false }

func isReadOnly(error) bool { return false }

package main

func shouldUseEditor(hasName bool, editFlag bool, interactive bool) bool {
	if editFlag {
		return true
	}
	if hasName {
		return false
	}
	return interactive
}

// Command archivemail is the admin notification service of the archive.
//
// Usage:
//
//	archivemail serve
//	archivemail spam-alert --file report.json [--dry-run]
//	archivemail create-admin --login name --email address
package main

func main() {
	Execute()
}

/*
	Project: Bursar - fee submissions & payment approvals of a school web app.
*/
package bursar

/*
Layout:
	apps/api      HTTP JSON API (echo), wired with dig
	apps/admin    admin CLI: migrations, users, tokens & approvals
	core          domain: users & roles, fee catalog, submissions workflow
	services      email (console | sendgrid) & logger (rollbar)
	storage       postgres | sqlite (sqlx + squirrel), in-memory repos for tests
	fs            embedded migrations & email templates

TODO: accept the payment meta & the pending submissions in a single transaction
	(today a failure between both writes leaves the meta stored & the submissions pending; it is logged)
*/

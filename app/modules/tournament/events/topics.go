package tournamentevents

// Request topics. Commands from the bot front end arrive on these subjects.
const (
	TournamentCreateRequestedV1      = "tournament.create.requested.v1"
	TournamentListRequestedV1        = "tournament.list.requested.v1"
	TournamentSelectRequestedV1      = "tournament.select.requested.v1"
	ParticipantsAddRequestedV1       = "tournament.participants.add.requested.v1"
	ParticipantsRemoveRequestedV1    = "tournament.participants.remove.requested.v1"
	TournamentDeleteRequestedV1      = "tournament.delete.requested.v1"
	TournamentStartRequestedV1       = "tournament.start.requested.v1"
	TournamentRebuildRequestedV1     = "tournament.rebuild.requested.v1"
	TournamentMatchStartRequestedV1  = "tournament.match.start.requested.v1"
	TournamentMatchReportRequestedV1 = "tournament.match.report.requested.v1"
	TournamentEndRequestedV1         = "tournament.end.requested.v1"
)

// Result topics.
const (
	TournamentCreatedV1      = "tournament.create.succeeded.v1"
	TournamentCreateFailedV1 = "tournament.create.failed.v1"

	TournamentListedV1     = "tournament.list.succeeded.v1"
	TournamentListFailedV1 = "tournament.list.failed.v1"

	TournamentSelectedV1     = "tournament.select.succeeded.v1"
	TournamentSelectFailedV1 = "tournament.select.failed.v1"

	ParticipantsAddedV1     = "tournament.participants.add.succeeded.v1"
	ParticipantsAddFailedV1 = "tournament.participants.add.failed.v1"

	ParticipantsRemovedV1      = "tournament.participants.remove.succeeded.v1"
	ParticipantsRemoveFailedV1 = "tournament.participants.remove.failed.v1"

	TournamentDeletedV1      = "tournament.delete.succeeded.v1"
	TournamentDeleteFailedV1 = "tournament.delete.failed.v1"

	TournamentStartedV1     = "tournament.start.succeeded.v1"
	TournamentStartFailedV1 = "tournament.start.failed.v1"

	TournamentRebuiltV1       = "tournament.rebuild.succeeded.v1"
	TournamentRebuildFailedV1 = "tournament.rebuild.failed.v1"

	TournamentMatchStartedV1     = "tournament.match.start.succeeded.v1"
	TournamentMatchStartFailedV1 = "tournament.match.start.failed.v1"

	TournamentMatchReportedV1     = "tournament.match.report.succeeded.v1"
	TournamentMatchReportFailedV1 = "tournament.match.report.failed.v1"

	TournamentEndedV1     = "tournament.end.succeeded.v1"
	TournamentEndFailedV1 = "tournament.end.failed.v1"
)

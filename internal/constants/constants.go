package constants

//ProjectID Default GCP project.
const ProjectID = "docuflow-events"

//CollectionChangeCounters Name of the collection with per-day change counters.
const CollectionChangeCounters = "documentChangeCounters"

//TopicDocumentCreated Name of the topic.
const TopicDocumentCreated = "document-created"

//TopicDocumentUpdated Name of the topic.
const TopicDocumentUpdated = "document-updated"

//TopicDocumentDeleted Name of the topic.
const TopicDocumentDeleted = "document-deleted"

// Package club defines the four record types of the club site (events,
// members, achievements and blog posts), their identifiers and their schema.
//
// Every type implements Record, which gives the generic collection and sync
// layers what they need without reflection: the record's id, a copy with a
// new id, a deep clone, schema validation and the collection it belongs to.
//
// Ids are strings assigned by the creating side. IDFrom and ID.UnmarshalJSON
// normalise numeric ids coming from document databases so that a record
// stored as 42 is matched by "42".
//
// Defaults returns the dataset embedded in the binary, used when the local
// cache has nothing saved yet.
package club

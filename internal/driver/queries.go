package driver

const (
	SaveSymptomNodeQuery = `
		MERGE (n:Symptom {name: $name})
		RETURN n.name AS name
	`

	SaveRelationQuery = `
		MATCH (source:Symptom {name: $source})
		MATCH (target:Symptom {name: $target})
		MERGE (source)-[e:RELATES_TO {kind: $kind}]->(target)
		SET e.weight = $weight
		RETURN e.kind AS kind
	`

	ClearGraphQuery = `
		MATCH (n:Symptom) DETACH DELETE n
	`
)

package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// nameContains matches name as a literal substring
func nameContains(name string, caseInsensitive bool) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(name)}
	if caseInsensitive {
		re.Options = "i"
	}
	return bson.M{"name": re}
}

// movieCountsPipeline projects the size of each requested actor's movies array
func movieCountsPipeline(ids []primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": ids}}}},
		{{Key: "$project", Value: bson.M{
			"count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$movies", bson.A{}}}},
		}}},
	}
}

func sampleActorsPipeline(n int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": n}}},
	}
}

func randomMoviePipeline(minYear, maxYear int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"year": bson.M{"$gte": minYear, "$lte": maxYear}}}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}
}

// collaboratorsPipeline runs on the movie collection: unwind the cast of every
// movie featuring the actor, drop the actor, then join the actor documents.
func collaboratorsPipeline(actorID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"actors": actorID}}},
		{{Key: "$unwind", Value: "$actors"}},
		{{Key: "$match", Value: bson.M{"actors": bson.M{"$ne": actorID}}}},
		{{Key: "$group", Value: bson.M{"_id": "$actors"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         actorCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "actor",
		}}},
		{{Key: "$unwind", Value: "$actor"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$actor"}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}}},
	}
}

// statsPipeline sums cast sizes and finds the release year bounds
func statsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"credits": bson.M{"$sum": bson.M{"$size": bson.M{"$ifNull": bson.A{"$actors", bson.A{}}}}},
			"minYear": bson.M{"$min": "$year"},
			"maxYear": bson.M{"$max": "$year"},
		}}},
	}
}

package httpapi

type obj = map[string]any

func ref(name string) obj {
	return obj{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema obj) obj {
	return obj{"application/json": obj{"schema": schema}}
}

func response(description string, schema obj) obj {
	r := obj{"description": description}
	if schema != nil {
		r["content"] = jsonContent(schema)
	}
	return r
}

func pathParam(name, format string) obj {
	schema := obj{"type": "string"}
	if format != "" {
		schema["format"] = format
	}
	return obj{"name": name, "in": "path", "required": true, "schema": schema}
}

func queryParam(name, typ, description string) obj {
	return obj{"name": name, "in": "query", "required": false, "description": description, "schema": obj{"type": typ}}
}

func numberPage(item string) obj {
	return obj{
		"type": "object",
		"properties": obj{
			"count":    obj{"type": "integer"},
			"next":     obj{"type": "string", "format": "uri", "nullable": true},
			"previous": obj{"type": "string", "format": "uri", "nullable": true},
			"results":  obj{"type": "array", "items": ref(item)},
		},
	}
}

func props(fields map[string]string) obj {
	p := obj{}
	for name, typ := range fields {
		switch typ {
		case "date-time", "uuid", "uri":
			p[name] = obj{"type": "string", "format": typ}
		case "nullable-date-time":
			p[name] = obj{"type": "string", "format": "date-time", "nullable": true}
		default:
			p[name] = obj{"type": typ}
		}
	}
	return obj{"type": "object", "properties": p}
}

var userFields = map[string]string{
	"uuid":                      "uuid",
	"instagram_id":              "string",
	"username":                  "string",
	"full_name":                 "string",
	"profile_picture":           "uri",
	"biography":                 "string",
	"is_private":                "boolean",
	"is_verified":               "boolean",
	"media_count":               "integer",
	"follower_count":            "integer",
	"following_count":           "integer",
	"allow_auto_update_stories": "boolean",
	"allow_auto_update_profile": "boolean",
	"created_at":                "date-time",
	"updated_at":                "date-time",
	"has_stories":               "boolean",
	"has_history":               "boolean",
}

func withFields(base map[string]string, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var storyFields = map[string]string{
	"story_id":         "string",
	"thumbnail":        "uri",
	"blur_data_url":    "string",
	"media":            "uri",
	"created_at":       "date-time",
	"story_created_at": "date-time",
}

func storySchema(userSchema string) obj {
	s := props(storyFields)
	s["properties"].(obj)["user"] = ref(userSchema)
	return s
}

// openAPIDocument describes the public API as an OpenAPI 3 document.
func openAPIDocument(server string) obj {
	pageSize := queryParam("page_size", "integer", "Results per page, at most 100.")
	page := queryParam("page", "integer", "Page number.")
	search := queryParam("search", "string", "Matches username, full name or biography.")
	userUUID := pathParam("uuid", "uuid")
	storyID := pathParam("story_id", "")
	notFound := response("Not found", ref("Detail"))
	unauthorized := response("Missing or invalid credentials", ref("Detail"))
	basicAuth := []obj{{"basicAuth": []string{}}}

	userDetail := withFields(userFields, map[string]string{
		"auto_update_stories_limit_count": "integer",
		"auto_update_profile_limit_count": "integer",
		"updated_at_from_api":             "nullable-date-time",
	})
	history := withFields(userDetail, map[string]string{
		"history_id":   "integer",
		"history_date": "date-time",
		"history_type": "string",
	})
	delete(history, "has_stories")
	delete(history, "has_history")

	similar := storySchema("UserList")
	similar["properties"].(obj)["similarity_score"] = obj{"type": "number"}

	return obj{
		"openapi": "3.0.3",
		"info": obj{
			"title":   "Instagram archive API",
			"version": "1.0.0",
		},
		"servers": []obj{{"url": server}},
		"paths": obj{
			"/api/instagram/stories/": obj{
				"get": obj{
					"operationId": "stories_list",
					"parameters": []obj{
						queryParam("cursor", "string", "Pagination cursor."),
						pageSize,
						search,
						queryParam("user", "string", "Only stories of this user UUID."),
					},
					"responses": obj{
						"200": response("Cursor paginated stories", obj{
							"type": "object",
							"properties": obj{
								"next":     obj{"type": "string", "format": "uri", "nullable": true},
								"previous": obj{"type": "string", "format": "uri", "nullable": true},
								"results":  obj{"type": "array", "items": ref("StoryList")},
							},
						}),
						"400": response("Invalid filter", nil),
					},
				},
			},
			"/api/instagram/stories/{story_id}/": obj{
				"get": obj{
					"operationId": "stories_retrieve",
					"parameters":  []obj{storyID},
					"responses":   obj{"200": response("Story", ref("StoryDetail")), "404": notFound},
				},
			},
			"/api/instagram/stories/{story_id}/similar/": obj{
				"get": obj{
					"operationId": "stories_similar",
					"parameters":  []obj{storyID, page, pageSize},
					"responses":   obj{"200": response("Stories ranked by embedding similarity", numberPage("SimilarStory"))},
				},
			},
			"/api/instagram/users/": obj{
				"get": obj{
					"operationId": "users_list",
					"parameters":  []obj{page, pageSize, search},
					"responses":   obj{"200": response("Users", numberPage("UserList"))},
				},
				"post": obj{
					"operationId": "users_create",
					"security":    basicAuth,
					"requestBody": obj{"required": true, "content": jsonContent(props(map[string]string{"username": "string"}))},
					"responses": obj{
						"201": response("Archived user", ref("UserDetail")),
						"400": response("Invalid username", nil),
						"401": unauthorized,
						"409": response("Already archived", ref("Detail")),
					},
				},
			},
			"/api/instagram/users/{uuid}/": obj{
				"get": obj{
					"operationId": "users_retrieve",
					"parameters":  []obj{userUUID},
					"responses":   obj{"200": response("User", ref("UserDetail")), "404": notFound},
				},
				"patch": obj{
					"operationId": "users_partial_update",
					"parameters":  []obj{userUUID},
					"security":    basicAuth,
					"requestBody": obj{"content": jsonContent(props(map[string]string{
						"allow_auto_update_stories":       "boolean",
						"allow_auto_update_profile":       "boolean",
						"auto_update_stories_limit_count": "integer",
						"auto_update_profile_limit_count": "integer",
					}))},
					"responses": obj{"200": response("Updated user", ref("UserDetail")), "401": unauthorized, "404": notFound},
				},
				"delete": obj{
					"operationId": "users_destroy",
					"parameters":  []obj{userUUID},
					"security":    basicAuth,
					"responses":   obj{"204": response("Deleted", nil), "401": unauthorized, "404": notFound},
				},
			},
			"/api/instagram/users/{uuid}/history/": obj{
				"get": obj{
					"operationId": "users_history",
					"parameters":  []obj{userUUID, page, pageSize},
					"responses":   obj{"200": response("History, newest first", numberPage("UserHistory")), "404": notFound},
				},
			},
			"/api/instagram/users/{uuid}/update-stories/": obj{
				"post": obj{
					"operationId": "users_update_stories",
					"parameters":  []obj{userUUID},
					"security":    basicAuth,
					"responses": obj{
						"200": response("Archive result", props(map[string]string{"created": "integer", "skipped": "integer", "failed": "integer"})),
						"401": unauthorized,
						"404": notFound,
					},
				},
			},
			"/api/instagram/users/{uuid}/update-profile/": obj{
				"post": obj{
					"operationId": "users_update_profile",
					"parameters":  []obj{userUUID},
					"security":    basicAuth,
					"responses":   obj{"200": response("Refreshed user", ref("UserDetail")), "401": unauthorized, "404": notFound},
				},
			},
		},
		"components": obj{
			"securitySchemes": obj{
				"basicAuth": obj{"type": "http", "scheme": "basic"},
			},
			"schemas": obj{
				"Detail":       props(map[string]string{"detail": "string"}),
				"UserList":     props(withFields(userFields, map[string]string{"api_updated_at": "nullable-date-time"})),
				"UserDetail":   props(userDetail),
				"UserHistory":  props(history),
				"StoryList":    storySchema("UserList"),
				"StoryDetail":  storySchema("UserDetail"),
				"SimilarStory": similar,
			},
		},
	}
}

// Package prompts builds the messages sent to the synthesis model.
package prompts

import (
	"fmt"

	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// SystemMessage frames the model as a read-only SQL analyst for the
// given dialect ("PostgreSQL" or "SQL Server").
func SystemMessage(dialect string) string {
	return fmt.Sprintf(`You are an expert-level data analyst and a master of %[1]s SQL, encapsulated within an automated BI agent.

**Your Primary Objective:** To accurately answer a user's natural language question by generating a valid %[1]s SQL query, interpreting the results, and providing a clear, insightful summary.

**Your Core Principles:**
1. **Context is King:** You MUST base your SQL queries exclusively on the provided **Semantic Context**. Do not invent table names, column names, or metrics that are not defined in the context.
2. **Precision and Accuracy:** Your generated SQL must be syntactically correct for %[1]s. Your analysis of the data must be factual and directly supported by the query results.
3. **Clarity:** Your final answer to the user should be in plain, easy-to-understand language. Avoid technical jargon where possible.
4. **Security:** You must never generate SQL that modifies the database (no INSERT, UPDATE, DELETE, DROP, etc.). Your role is strictly read-only (SELECT).

**Your Operational Flow:**
- First, you will be given a user's question and a relevant **Semantic Context**. Your task is to generate a SQL query.
- Next, if the query is successful, you will be given the original question and the data results. Your task is to analyze them and form a response.
- If the query fails, you will be given the error and asked to debug and fix your original SQL query.`, dialect)
}

// tierGuidance adds per-complexity instructions so simple questions
// stay cheap and advanced ones get room to use richer SQL.
func tierGuidance(tier models.ComplexityTier) string {
	switch tier {
	case models.ComplexitySimple:
		return "- Keep the query minimal: a single SELECT with at most one aggregate, no subqueries."
	case models.ComplexityComplex:
		return "- The question needs comparative or multi-step logic: use joins, grouping, and subqueries as required, but keep the query a single statement."
	case models.ComplexityAdvanced:
		return "- The question needs analytical SQL: window functions, CTEs, and date arithmetic are all appropriate, but keep the query a single statement."
	default:
		return "- Use joins and aggregations as needed, but keep the query a single statement."
	}
}

// Synthesis builds the SQL-generation prompt.
func Synthesis(question, context, currentDate, dialect string, tier models.ComplexityTier) string {
	return fmt.Sprintf(`Given the context and question below, generate a single, valid %[1]s SQL query to answer the question.

**Follow these strict instructions:**
- Output ONLY the raw SQL query and nothing else. Do not add explanations, comments, or any surrounding text.
- Use only the tables, columns, metrics, and relationships defined in the Semantic Context.
- If the question involves a time period (e.g., "last quarter", "this year"), use appropriate date functions in %[1]s. Assume the current date is %[2]s.
%[3]s

--- SEMANTIC CONTEXT ---
%[4]s

--- QUESTION ---
%[5]s

--- %[1]s SQL QUERY ---`, dialect, currentDate, tierGuidance(tier), context, question)
}

// Repair builds the fix-and-retry prompt from the database's own
// error text.
func Repair(question, context, failedSQL, dbError, dialect string) string {
	return fmt.Sprintf(`The %[1]s SQL query you previously generated failed to execute. Analyze your failed query and the provided database error message to understand the problem.

Your task is to generate a corrected %[1]s SQL query.

**Follow these strict instructions:**
- Carefully review the error message. It often contains the key to the solution (e.g., "invalid identifier", "syntax error").
- Compare the failed query with the provided Semantic Context to ensure all table and column names were correct.
- Output ONLY the new, corrected SQL query and nothing else.

--- SEMANTIC CONTEXT ---
%[2]s

--- ORIGINAL QUESTION ---
%[3]s

--- FAILED SQL QUERY ---
%[4]s

--- DATABASE ERROR MESSAGE ---
%[5]s

--- CORRECTED %[1]s SQL QUERY ---`, dialect, context, question, failedSQL, dbError)
}

// Analysis builds the result-interpretation prompt. resultsJSON is
// the executed rows serialized as JSON.
func Analysis(question, resultsJSON string) string {
	return fmt.Sprintf(`You previously generated a SQL query to answer a user's question. The query was successful.

Now, analyze the provided data results and formulate a final, human-readable answer.

**Follow these strict instructions:**
- Begin by directly answering the user's original question.
- Summarize the key insights and trends found in the data. Do not just list the raw data.
- If the data contains numerical values, present them clearly.
- Your entire response should be a concise, well-written paragraph or a short list of bullet points.

--- ORIGINAL QUESTION ---
%s

--- DATA RESULTS (in JSON format) ---
%s

--- ANALYSIS & FINAL ANSWER ---`, question, resultsJSON)
}

package usecase

import (
	"fmt"
	"strings"
)

// Persona and output contract shared by every analysis prompt. The scoring
// format mention inside the preamble is swapped per request for trade
// analysis.
const promptPreamble = "You are 'The Analyst,' a data-driven, no-nonsense fantasy football expert " +
	"providing advice for the upcoming 2025 NFL season. All analysis is for a 12-team, PPR league " +
	"with standard Yahoo scoring rules. Be direct, cite the numbers you are given, and never invent statistics."

const jsonOutputInstruction = "Your response MUST be a single, valid JSON object with exactly two keys: " +
	"\"confidence\" (a number between 0.0 and 1.0 reflecting how certain you are) and " +
	"\"analysis\" (a string containing your full answer in markdown). Do not include any text outside the JSON object."

func dossierPrompt(playerContext string) string {
	return promptPreamble +
		"\n\n**Task:** First, create a detailed markdown report for the player with headers: " +
		"### Depth Chart Role, ### Value Analysis, ### Risk Factors, ### 2025 Outlook, and ### Final Verdict. " +
		"Then, wrap this entire markdown report inside the 'analysis' key of your JSON output." +
		"\n\n**Player Data:**\n" + playerContext +
		"\n\n" + jsonOutputInstruction
}

func rookieRankingsPrompt(rookieLines []string) string {
	return promptPreamble +
		"\n\n**Task:** From the provided Rookie Data, create a ranked list of the top 15 rookies. " +
		"Ensure that the 'position' field in your output matches the position of the player in the provided data." +
		"\n\n**Rookie Data:**\n" + strings.Join(rookieLines, "\n") +
		"\n\n**Instructions:** Your response MUST be a single, valid JSON object with one top-level key: \"rookies\". " +
		"The value of \"rookies\" MUST be a JSON array of rookie objects, each with the keys, in this exact order: " +
		"\"rank\" (integer), \"name\" (string), \"position\" (string), \"team\" (string), " +
		"\"ecr\" (float or null), \"sd\" (float or null), \"best\" (integer or null), \"worst\" (integer or null), " +
		"\"rank_delta\" (float or null), and \"analysis\" (string, 1-2 sentences). " +
		"For any numeric field where data is not available, use null instead of \"N/A\" or any other string. " +
		"Do not include any text or formatting outside of this single JSON object."
}

func keeperEvaluationPrompt(keeperContext string) string {
	return promptPreamble +
		"\n\n**Task:** Analyze these keepers. Compare Cost to ECR. Note bye week overlaps. Prioritize recommendations." +
		"\n\n**Data:**\n" + keeperContext +
		"\n\n" + jsonOutputInstruction
}

func tradeAnalysisPrompt(scoring, myAssets, partnerAssets string) string {
	preamble := promptPreamble
	if scoring != "" && !strings.EqualFold(scoring, "PPR") {
		preamble = strings.ReplaceAll(preamble, "PPR", scoring)
	}
	return preamble +
		"\n\n**Task:** Analyze this trade from the perspective of 'My Team'. Declare a winner or if it is fair. " +
		"Justify your answer, consistently referring to the sides as 'My Team' and 'The Other Team'." +
		"\n\n**Assets My Team Receives:**\n" + myAssets +
		"\n\n**Assets The Other Team Receives:**\n" + partnerAssets +
		"\n\n" + jsonOutputInstruction
}

func positionalTiersPrompt(position, playerListJSON string) string {
	return promptPreamble +
		fmt.Sprintf("\n\n**Task:** Group the following %ss into Tiers. ", position) +
		"Your response MUST be a single JSON object with one key, 'tiers', whose value is a JSON array. " +
		"Each object in the 'tiers' array should represent a tier and have the following keys: " +
		"'header' (string, e.g., 'Tier 1: Elite Quarterbacks'), 'summary' (string, a 1-sentence summary), " +
		"and 'players' (JSON array of player objects; each player object MUST have " +
		"'name', 'position', 'team', 'ecr', 'sd', 'best', 'worst', 'rank_delta' keys)." +
		"\n\n**Player List for Tiers (JSON Array):**\n" + playerListJSON
}

func marketInefficienciesPrompt(candidates string) string {
	return promptPreamble +
		"\n\n**Task:** Find market inefficiencies. Your response MUST be a single JSON object with two keys: " +
		"\"sleepers\" and \"busts\". Each key must contain a JSON array of 3-5 player objects. " +
		"Each player object MUST have the following keys: \"name\" (string), \"justification\" (string), " +
		"\"confidence\" (string: 'High', 'Medium', or 'Low'), \"ecr\" (float or null), \"sd\" (float or null), " +
		"\"best\" (integer or null), \"worst\" (integer or null), \"rank_delta\" (float or null), " +
		"and \"is_rookie\" (boolean). For any numeric field where data is not available, use null." +
		"\n\n**Data:**\n" + candidates
}

func waiverSwapPrompt(rosterContext, candidateContext string) string {
	return promptPreamble + `

**Task:** You are tasked with evaluating a potential waiver wire transaction. A user wants to pick up a specific player and needs to know if it's a good move and, if so, who to drop from their current roster.

1.  **Analyze the Waiver Candidate:** Evaluate the player to be added based on their current performance, role, and future outlook for the 2025 season.
2.  **Analyze the User's Roster:** Examine the user's current roster to identify strengths, weaknesses, and potential players who could be dropped. Pay close attention to underperforming players, players with difficult upcoming schedules, or positions where the user has a surplus.
3.  **Formulate a Recommendation:**
    *   Provide a clear "verdict" on whether to **ADD** the player or **DO NOT ADD** the player.
    *   If the verdict is to ADD the player, you MUST recommend a specific player to **DROP**.
    *   Justify your recommendation with a detailed analysis, comparing the waiver candidate directly to the suggested drop candidate. Consider factors like positional need, bye weeks, short-term vs. long-term value, and overall impact on the team's strength.

**My Current Roster:**
` + rosterContext + `

**Waiver Wire Player to Consider Adding:**
` + candidateContext + "\n\n" + jsonOutputInstruction
}

func waiverWirePrompt(rosterContext, availableContext string) string {
	return promptPreamble +
		"\n\n**Task:** Analyze my current roster and the top available waiver wire players. " +
		"Recommend 3-5 players to add, justifying each recommendation based on Yahoo PPR scoring, " +
		"current performance, and potential upside. Also, suggest 1-2 players to drop if necessary." +
		"\n\n**My Current Roster:**\n" + rosterContext +
		"\n\n**Top Available Waiver Wire Players:**\n" + availableContext +
		"\n\n" + jsonOutputInstruction
}

func suggestPositionPrompt(currentRound int, draftSummary string) string {
	return promptPreamble +
		fmt.Sprintf("\n\n**Task:** It is Round %d. Based on my detailed roster below, what are the top 2 positions I should target? Justify.", currentRound) +
		"\n\n**My Draft So Far:**\n" + draftSummary
}

func pickEvaluatorPrompt(currentRound int, draftSummary, playerContext string) string {
	return promptPreamble +
		fmt.Sprintf("\n\n**Task:** Analyze if this is a good pick for me in Round %d. ", currentRound) +
		"Compare ECR to the round and evaluate roster fit. Give a 'GOOD PICK', 'SOLID PICK,' or 'POOR PICK' verdict." +
		"\n\n**My Draft So Far:**\n" + draftSummary +
		"\n\n**Player Being Considered:**\n" + playerContext +
		"\n\n" + jsonOutputInstruction
}

func rosterCompositionPrompt(composition string) string {
	return promptPreamble +
		"\n\n**Task:** Provide a brief, 2-3 sentence analysis of my roster balance based on these position counts." +
		"\n\n**Composition:**\n" + composition
}

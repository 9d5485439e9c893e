package annotate

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxPostTextLength bounds the post text inserted into the prompt.
const maxPostTextLength = 2000

// ModelVersion tags the annotation pipeline revision, independent of the
// model name.
const ModelVersion = "1.0.0"

const systemMessage = `You are both a precise clinical text annotator and a Pomelo Care clinician communicator.
Return ONLY valid JSON (no prose, no markdown). If unsure, use "unknown" or [] as specified.

Your tasks:
(a) Categorize the post using the taxonomy.
(b) Summarize it objectively.
(c) Generate a safe, empathetic clinician-style Reddit reply in Pomelo Care's tone.
(d) Extract care-relevant keywords and safety flags for downstream analysis.

Tone & persona:
- Write in the calm, supportive, and informed tone of a licensed maternal-care clinician.
- Do NOT introduce yourself or mention any organization.
- Warm, inclusive, reassuring, 6th-8th grade reading level.
- Provide general, educational guidance; do NOT diagnose or prescribe.
- Encourage follow-up with their OB-GYN, midwife, or nurse for individualized care.
- If serious symptoms appear (e.g., heavy bleeding, severe pain, headache with vision changes, fever >=100.4F, shortness of breath, chest pain, suicidal thoughts), instruct immediate evaluation at an ER, Labor & Delivery, or local emergency services.
- If a mental health crisis is implied, recommend emergency or crisis line support.`

const promptTemplate = `Task: Given a cleaned Reddit post about pregnancy or maternal care, produce ONE JSON object that includes:
1) Topic categorization per the taxonomy below,
2) A concise factual summary of the post ("post_summary"),
3) A clinician-style, empathetic Reddit reply ("care_response"),
4) A list of meaningful care-related keywords ("keywords"),
5) A list of safety or escalation flags ("safety_flags").

---

KEYWORDS
Extract 5-20 meaningful tokens that reflect clinical, behavioral, contextual, or social relevance - not filler or emotional words.
You may include words from the lists below plus any other terms the model deems informative for identifying trends or dimensions in pregnancy and maternal care.
This includes emerging medications, health technologies, new policies, social issues, or slang commonly used in patient discussions.

Domains (examples only, not exhaustive):
1. Clinical & symptom-related -> "bleeding", "cramping", "pain", "spotting", "swelling", "contractions", "nausea", "headache", "preeclampsia", "ultrasound", "hcg", "glucose test", "infection".
2. Medications & labs -> "iron", "tylenol", "prenatal vitamin", "magnesium", "zofran", "insulin", "antibiotic", "lab results".
3. Mental health -> "anxiety", "depression", "panic", "therapy", "postpartum depression", "lonely", "stressed".
4. Access & insurance -> "medicaid", "insurance", "copay", "appointment", "ob-gyn", "midwife", "telehealth", "clinic".
5. Parenting & postpartum -> "breastfeeding", "bottle feeding", "sleep", "c-section", "NICU", "pumping", "maternity leave".
6. Policy, geographic & social context -> "texas", "rural", "law", "policy", "coverage", "equity", "leave policy".
7. Other emerging, data-relevant, or trend-signaling terms -> anything about technology, social barriers, medication shortages, new slang, or community hashtags.

Exclude stopwords, pronouns, and generic filler (e.g., "help," "please," "feel"). Include lowercase, short tokens only.

---

SAFETY FLAGS
List all that apply. Use the categories below, adding specific triggers or urgent-care keywords if mentioned.

- "urgent_bleeding" -> heavy bleeding, soaking pads, hemorrhage, etc.
- "urgent_pain" -> severe abdominal, pelvic, or back pain; contractions or cramps suggesting preterm labor.
- "urgent_fever_infection" -> fever, chills, discharge, infection, wound issues.
- "urgent_dizziness_fainting" -> fainting, dizziness, low blood pressure, weakness.
- "urgent_breathing_chest" -> shortness of breath, chest pain, heart racing.
- "urgent_fetal_concern" -> no or reduced fetal movement, kick count worries.
- "urgent_postpartum" -> heavy bleeding, severe pain, or fever after delivery.
- "mental_health_crisis" -> suicidal ideation, panic, hopelessness, severe anxiety.
- "miscarriage_or_loss" -> miscarriage, pregnancy loss, stillbirth.
- "medication_safety" -> unsafe drug use, dosing confusion, substance exposure.
- "infection_or_sepsis" -> uterine infection, endometritis, wound infection.
- "other_concern" -> other safety-relevant escalation (e.g., swelling, blurred vision, hypertension).

If no urgent or risky content, return an empty array.

---

TAXONOMY
groups:
- clinical
  topics: symptoms_body_changes, medications_supplements, test_results_labs, pregnancy_complications, labor_delivery
- mental_health
  topics: anxiety_fear_uncertainty, mood_depression, body_image_identity, relationship_stress, peer_support_requests
- lifestyle_parenting
  topics: nutrition_diet, exercise_movement, sleep_fatigue, work_leave_career, postpartum_care
- access_navigation
  topics: choosing_provider, hospital_clinic_experiences, insurance_costs, telehealth_virtual_care, system_barriers_equity
- community_info
  topics: ask_experiences_advice, share_stories_outcomes, product_device_discussions, information_validation_misinformation
- meta_context
  topics: question_seeking_info, experience_sharing_narrative, opinion_rant_vent, announcement_milestone, policy_advocacy_news

---

TRIMESTER ENUM LOGIC
- "preconception" -> trying to conceive or planning pregnancy
- "first", "second", "third" -> stated or clearly implied
- "pregnant" -> clearly pregnant but trimester not specified
- "postpartum" -> after giving birth
- "miscarriage" -> discussing pregnancy loss
- "unclear" -> insufficient info to determine pregnancy status

---

ENUMS
- primary_group in {clinical, mental_health, lifestyle_parenting, access_navigation, community_info, meta_context}
- primary_topic in one of the topics listed under its group
- trimester in {preconception, first, second, third, pregnant, postpartum, miscarriage, unclear}
- sentiment in {negative, neutral, positive}
- urgency_0_3 in {0,1,2,3} (0=routine, 3=urgent)

---

RULES
- Choose exactly 1 primary_group and 1 primary_topic.
- Optionally add up to 3 secondary_topics.
- Use "unknown" or "unclear" when needed.
- Do NOT include the original post text in the JSON.
- "post_summary" must be a neutral, factual summary (1-3 sentences).
- "care_response" must be an empathetic, safe Reddit-style clinician reply consistent with Pomelo's tone.

---

JSON SCHEMA
{
  "post_id": string,
  "primary_group": string,
  "primary_topic": string,
  "secondary_topics": string[],
  "trimester": string,
  "sentiment": string,
  "urgency_0_3": integer,
  "keywords": string[],
  "safety_flags": string[],
  "post_summary": string,
  "care_response": string
}

Return JSON ONLY. No explanations or markdown.

Now annotate and reply to this post:

post_id: "{{POST_ID}}"
post_text: "{{POST_TEXT}}"
`

// PromptHash is the content hash carried by every annotation record so that
// future prompt changes stay distinguishable from legacy rows sharing the
// table. First 16 hex chars of the template's SHA-256.
func PromptHash() string {
	sum := sha256.Sum256([]byte(promptTemplate))
	return hex.EncodeToString(sum[:])[:16]
}

// BuildPrompt fills the template for one post, truncating the text to its
// bounded length.
func BuildPrompt(postID, postText string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{POST_ID}}", postID)
	return strings.ReplaceAll(prompt, "{{POST_TEXT}}", Truncate(postText, maxPostTextLength))
}

// Truncate bounds a string to n runes without splitting a multibyte sequence.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
